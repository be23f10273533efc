package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mapped-wrap/internal/batch"
	"mapped-wrap/internal/mesh"
	"mapped-wrap/internal/objfile"
	"mapped-wrap/internal/rig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restScene = `shapes:
  - name: base
    points: [[0, 0, 0], [1, 0, 0], [2, 0, 0], [3, 0, 0]]
  - name: target
    points: [[0, 0, 0], [2, 0, 0]]
  - name: stray
    points: [[2, 0, 0], [9, 9, 9]]
  - name: near
    points: [[0.0005, 0, 0]]
`

const movedScene = `shapes:
  - name: base
    points: [[0, 0, 0], [1, 0, 0], [2, 0, 0], [3, 0, 0]]
  - name: target
    points: [[0, 5, 0], [2, 5, 0]]
`

type workspace struct {
	dir    string
	config string
	moved  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:    dir,
		config: filepath.Join(dir, "mapwrap.yaml"),
		moved:  filepath.Join(dir, "moved.yaml"),
	}
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("rest.yaml", restScene)
	write("moved.yaml", movedScene)
	write("mapwrap.yaml", "scene: "+filepath.Join(dir, "rest.yaml")+"\n"+
		"store_dir: "+filepath.Join(dir, "deformers")+"\n"+
		"output_dir: "+filepath.Join(dir, "out")+"\n"+
		"workers: 2\nrender_size: 32\nsupersample: 1\nlog_level: error\n")
	return w
}

// run executes one CLI invocation against the workspace config.
func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestWorkflow(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "create", "base")
	require.NoError(t, err)
	assert.Equal(t, "baseWrap\n", out)

	out, err = w.run(t, "add-target", "base", "target")
	require.NoError(t, err)
	assert.Equal(t, "info: All 2 vertices were matched\n", out)

	out, err = w.run(t, "add-target", "baseWrap", "stray")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: 1 of 2 vertices couldn't be matched")
	assert.Contains(t, out, "warning: New target stray shares 1 vertices with existing target target")

	_, err = w.run(t, "add-target", "base", "target")
	assert.ErrorIs(t, err, rig.ErrAlreadyATarget)

	require.NoError(t, firstErr(w.run(t, "remove-target", "base", "stray")))

	out, err = w.run(t, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Deformer baseWrap on base envelope=1")
	assert.Contains(t, out, "[0] target envelope=1 vertices=2 unmatched=0")
	assert.NotContains(t, out, "stray envelope")

	out, err = w.run(t, "--scene", w.moved, "evaluate")
	require.NoError(t, err)
	assert.Contains(t, out, "baseWrap: 2 of 4 vertices written")

	got, err := objfile.Read(filepath.Join(w.dir, "out", "baseWrap.obj"), "base")
	require.NoError(t, err)
	assert.Equal(t, mesh.PointSet{{0, 5, 0}, {1, 0, 0}, {2, 5, 0}, {3, 0, 0}}, got.Points)

	data, err := os.ReadFile(filepath.Join(w.dir, "out", "manifest.json"))
	require.NoError(t, err)
	var entries []batch.ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "baseWrap", entries[0].Deformer)

	// Half envelope under the squared weight: w = 1 * 0.5 = 0.5.
	require.NoError(t, firstErr(w.run(t, "set-envelope", "base", "0.5")))
	_, err = w.run(t, "--scene", w.moved, "evaluate")
	require.NoError(t, err)
	got, err = objfile.Read(filepath.Join(w.dir, "out", "baseWrap.obj"), "base")
	require.NoError(t, err)
	assert.Equal(t, mesh.PointSet{{0, 2.5, 0}, {1, 0, 0}, {2, 2.5, 0}, {3, 0, 0}}, got.Points)
}

func TestEvaluateMetricsAndRender(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, firstErr(w.run(t, "create", "base")))
	require.NoError(t, firstErr(w.run(t, "add-target", "base", "target")))

	out, err := w.run(t, "--scene", w.moved, "evaluate", "--metrics", "--preview", "png")
	require.NoError(t, err)
	assert.Contains(t, out, `mapwrap_evaluations_total{deformer="baseWrap"} 1`)
	_, err = os.Stat(filepath.Join(w.dir, "out", "baseWrap.png"))
	assert.NoError(t, err)

	img := filepath.Join(w.dir, "renders", "wrap.webp")
	out, err = w.run(t, "--scene", w.moved, "render", "base", img, "--size", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "2 vertices moved")
	_, err = os.Stat(img)
	assert.NoError(t, err)
}

func TestSetTargetEnvelope(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, firstErr(w.run(t, "create", "base", "--name", "wrap")))
	require.NoError(t, firstErr(w.run(t, "add-target", "wrap", "target")))
	require.NoError(t, firstErr(w.run(t, "set-envelope", "wrap", "0.25", "--target", "target")))

	out, err := w.run(t, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "[0] target envelope=0.25")

	_, err = w.run(t, "set-envelope", "wrap", "1", "--target", "stray")
	assert.ErrorIs(t, err, rig.ErrNoTarget)
	_, err = w.run(t, "set-envelope", "wrap", "lots")
	assert.Error(t, err)
}

func TestCommandErrors(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.run(t, "add-target", "base", "target")
	assert.ErrorIs(t, err, rig.ErrNoDeformerFound)

	_, err = w.run(t, "create", "nothing")
	assert.ErrorIs(t, err, rig.ErrNoShape)

	_, err = w.run(t, "--store", "s3", "create", "base")
	assert.ErrorContains(t, err, "unknown store")

	_, err = w.run(t, "--log-level", "loud", "create", "base")
	assert.ErrorContains(t, err, "unknown level")

	_, err = w.run(t, "inspect", filepath.Join(w.dir, "model.fbx"))
	assert.ErrorContains(t, err, "unsupported model format")
}

func TestDelete(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, firstErr(w.run(t, "create", "base")))
	require.NoError(t, firstErr(w.run(t, "add-target", "base", "target")))

	out, err := w.run(t, "delete", "base")
	require.NoError(t, err)
	assert.Equal(t, "baseWrap\n", out)
	_, err = os.Stat(filepath.Join(w.dir, "deformers", "baseWrap.json"))
	assert.True(t, os.IsNotExist(err))

	out, err = w.run(t, "inspect")
	require.NoError(t, err)
	assert.NotContains(t, out, "Deformer baseWrap")

	_, err = w.run(t, "delete", "base")
	assert.ErrorIs(t, err, rig.ErrNoDeformerFound)

	// The base can carry a new deformer again.
	require.NoError(t, firstErr(w.run(t, "create", "base")))
}

func TestAddTargetExactTolerance(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, firstErr(w.run(t, "create", "base")))

	out, err := w.run(t, "add-target", "base", "near", "--tolerance", "0")
	require.NoError(t, err)
	assert.Equal(t, "warning: 1 of 1 vertices couldn't be matched\n", out)

	require.NoError(t, firstErr(w.run(t, "remove-target", "base", "near")))
	out, err = w.run(t, "add-target", "base", "near")
	require.NoError(t, err)
	assert.Equal(t, "info: All 1 vertices were matched\n", out)
}

func TestInspectOBJ(t *testing.T) {
	w := newWorkspace(t)
	path := filepath.Join(w.dir, "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644))

	out, err := w.run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Shape tri vertices=3 tris=1")
}

func firstErr(_ string, err error) error {
	return err
}
