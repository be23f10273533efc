package deform

import (
	"encoding/json"
	"testing"

	"mapped-wrap/internal/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateIndexes(t *testing.T) {
	s := NewState("wrap1", "body")
	assert.Equal(t, 0, s.NextIndex())

	a := s.Add("head", resolve.Mapping{0})
	b := s.Add("hand", resolve.Mapping{1})
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, 1.0, b.Envelope)

	require.True(t, s.Remove("hand"))
	assert.False(t, s.Remove("hand"))
	assert.Nil(t, s.Binding("hand"))

	// Removing the last slot frees its index; removing an earlier one does not.
	c := s.Add("foot", nil)
	assert.Equal(t, 1, c.Index)
	require.True(t, s.Remove("head"))
	d := s.Add("tail", nil)
	assert.Equal(t, 2, d.Index)
	assert.Equal(t, []string{"foot", "tail"}, []string{s.Targets[0].Target, s.Targets[1].Target})
}

func TestStateJSONDefaults(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "wrap1",
		"base": "body",
		"targets": [
			{"index": 3, "target": "head", "mapping": [0, -1, 2]},
			{"index": 4, "target": "hand", "envelope": 0.25, "mapping": []}
		]
	}`), &s))

	assert.Equal(t, 1.0, s.Envelope)
	require.Len(t, s.Targets, 2)
	assert.Equal(t, 1.0, s.Targets[0].Envelope)
	assert.Equal(t, resolve.Mapping{0, resolve.Unmatched, 2}, s.Targets[0].Mapping)
	assert.Equal(t, 0.25, s.Targets[1].Envelope)
	assert.Equal(t, 5, s.NextIndex())
}

func TestStateJSONExplicitZeroEnvelope(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"name": "w", "base": "b", "envelope": 0}`), &s))
	assert.Equal(t, 0.0, s.Envelope)
}
