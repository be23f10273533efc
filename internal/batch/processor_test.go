package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/logging"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/objfile"
	"mapped-wrap/internal/preview"
	"mapped-wrap/internal/resolve"
	"mapped-wrap/internal/rig"
	"mapped-wrap/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoRigs builds deformers wrapA and wrapB, each pulling vertex 0 of its base
// onto a target moved up by 5.
func twoRigs(t *testing.T) *rig.Rig {
	t.Helper()
	s := scene.New()
	for _, n := range []string{"a", "b"} {
		base := mesh.NewShape(n, mesh.PointSet{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
		base.Tris = []mesh.Triangle{{0, 1, 2}}
		s.Add(base)
		s.Add(mesh.NewShape(n+"Target", mesh.PointSet{{0, 0, 0}}))
	}

	r := rig.New(s)
	for _, n := range []string{"a", "b"} {
		_, err := r.CreateDeformer("", n)
		require.NoError(t, err)
		_, _, err = r.AddTarget(n, n+"Target", resolve.DefaultTolerance)
		require.NoError(t, err)
		target, _ := s.Shape(n + "Target")
		target.Points = mesh.PointSet{{0, 5, 0}}
	}
	return r
}

func TestRun(t *testing.T) {
	r := twoRigs(t)
	out := t.TempDir()
	var logs bytes.Buffer

	results := Run(context.Background(), Config{
		OutputDir: filepath.Join(out, "objs"),
		Workers:   2,
		Logger:    logging.NewWriter(&logs, slog.LevelInfo),
	}, r, []string{"aWrap", "bWrap", "missing"})

	require.Len(t, results, 3)
	for _, res := range results[:2] {
		assert.True(t, res.Success, res.Error)
		assert.Equal(t, 3, res.Vertices)
		assert.Equal(t, 1, res.Written)
	}
	assert.Equal(t, "a", results[0].Base)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "no deformer found")
	assert.Contains(t, logs.String(), "batch finished")

	got, err := objfile.Read(filepath.Join(out, "objs", "aWrap.obj"), "a")
	require.NoError(t, err)
	assert.Equal(t, mesh.PointSet{{0, 5, 0}, {1, 0, 0}, {0, 1, 0}}, got.Points)
	assert.Equal(t, []mesh.Triangle{{0, 1, 2}}, got.Tris)
}

func TestRunWithPreview(t *testing.T) {
	r := twoRigs(t)
	out := t.TempDir()
	opt := preview.DefaultOptions()
	opt.Size = 32
	opt.Supersample = 1

	results := Run(context.Background(), Config{
		OutputDir:      out,
		Workers:        1,
		Preview:        "png",
		PreviewOptions: opt,
	}, r, []string{"aWrap"})

	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, "aWrap.png", results[0].Image)
	_, err := os.Stat(filepath.Join(out, "aWrap.png"))
	assert.NoError(t, err)
}

func TestRunCancelled(t *testing.T) {
	r := twoRigs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, Config{OutputDir: t.TempDir(), Workers: 1}, r, []string{"aWrap", "bWrap"})
	require.Len(t, results, 2)
	for _, res := range results {
		// A job may still be picked up if the send wins the select race.
		if !res.Success {
			assert.Equal(t, context.Canceled.Error(), res.Error)
		}
	}
}

func TestRunMissingBase(t *testing.T) {
	s := scene.New()
	r := rig.New(s)
	require.NoError(t, r.Restore(deform.NewState("orphan", "gone")))

	results := Run(context.Background(), Config{OutputDir: t.TempDir()}, r, []string{"orphan"})
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "no input geometry")
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	err := WriteManifest(path, []Result{
		{Deformer: "aWrap", Base: "a", File: "aWrap.obj", Vertices: 3, Written: 1, Success: true},
		{Deformer: "bad", Error: "boom"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []ManifestEntry{{Deformer: "aWrap", Base: "a", File: "aWrap.obj", Vertices: 3, Written: 1}}, entries)
	assert.NotContains(t, string(data), "image")
}
