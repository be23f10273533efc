// Package storetest holds the behaviour every store.Store adapter must share.
package storetest

import (
	"context"
	"testing"

	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/resolve"
	"mapped-wrap/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContract runs the shared save/load/list/delete scenario against st.
func RunContract(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Load(ctx, "wrap1")
	require.ErrorIs(t, err, store.ErrNotFound)

	names, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	s := deform.NewState("wrap1", "body")
	s.Envelope = 0.75
	s.Add("head", resolve.Mapping{0, resolve.Unmatched, 4})
	s.Add("hand", resolve.Mapping{})
	s.Targets[1].Envelope = 0.5
	require.NoError(t, st.Save(ctx, s))
	require.NoError(t, st.Save(ctx, deform.NewState("wrap0", "legs")))

	got, err := st.Load(ctx, "wrap1")
	require.NoError(t, err)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, s.Base, got.Base)
	assert.Equal(t, 0.75, got.Envelope)
	require.Len(t, got.Targets, 2)
	assert.Equal(t, resolve.Mapping{0, resolve.Unmatched, 4}, got.Targets[0].Mapping)
	assert.Equal(t, 1, got.Targets[1].Index)
	assert.Equal(t, 0.5, got.Targets[1].Envelope)

	// Overwrite.
	s.Remove("head")
	require.NoError(t, st.Save(ctx, s))
	got, err = st.Load(ctx, "wrap1")
	require.NoError(t, err)
	require.Len(t, got.Targets, 1)
	assert.Equal(t, "hand", got.Targets[0].Target)

	names, err = st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wrap0", "wrap1"}, names)

	all, err := store.LoadAll(ctx, st)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, st.Delete(ctx, "wrap0"))
	_, err = st.Load(ctx, "wrap0")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "wrap0"), store.ErrNotFound)

	// Names that look like temp files are still ordinary deformers.
	require.NoError(t, st.Save(ctx, deform.NewState("tmp-baseWrap", "tmp-base")))
	names, err = st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tmp-baseWrap", "wrap1"}, names)
	all, err = store.LoadAll(ctx, st)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tmp-base", all[0].Base)

	assert.Error(t, st.Save(ctx, deform.NewState("", "body")), "empty names are rejected")
}
