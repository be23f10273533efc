package preview

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mapped-wrap/internal/mathutil"
	"mapped-wrap/internal/mesh"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() *mesh.Shape {
	s := mesh.NewShape("quad", mesh.PointSet{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	})
	s.Tris = []mesh.Triangle{{0, 1, 2}, {0, 2, 3}}
	return s
}

func frontOptions() Options {
	opt := DefaultOptions()
	opt.Size = 64
	opt.Supersample = 1
	opt.Yaw, opt.Pitch = 0, 0
	return opt
}

func TestRenderQuad(t *testing.T) {
	s := quad()
	img := Render(s, s.Points, frontOptions())

	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 2).A)
}

func TestRenderTintsMovedFaces(t *testing.T) {
	s := quad()
	opt := frontOptions()
	plain := Render(s, s.Points, opt)

	opt.Rest = mesh.PointSet{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0.5}}
	tinted := Render(s, s.Points, opt)

	// (24,24) lies inside the face that touches vertex 3 only.
	assert.NotEqual(t, plain.NRGBAAt(24, 24), tinted.NRGBAAt(24, 24))
	assert.Equal(t, plain.NRGBAAt(40, 40), tinted.NRGBAAt(40, 40))
}

func TestRenderUsesTransform(t *testing.T) {
	s := quad()
	s.Transform = mathutil.Compose(mathutil.Vec3{100, 0, 0}, mathutil.Vec3{}, mathutil.Vec3{1, 1, 1})
	img := Render(s, s.Points, frontOptions())

	// Framing follows the geometry, so a translated quad still fills the view.
	assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
}

func TestRenderEmptyAndPointCloud(t *testing.T) {
	empty := mesh.NewShape("empty", nil)
	img := Render(empty, nil, frontOptions())
	for i := 3; i < len(img.Pix); i += 4 {
		require.Zero(t, img.Pix[i])
	}

	cloud := mesh.NewShape("cloud", mesh.PointSet{{0, 0, 0}, {1, 1, 0}})
	img = Render(cloud, cloud.Points, frontOptions())
	assert.Equal(t, uint8(255), img.NRGBAAt(16, 48).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(48, 16).A)
}

func TestRenderSupersample(t *testing.T) {
	s := quad()
	opt := frontOptions()
	opt.Supersample = 2
	img := Render(s, s.Points, opt)

	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	assert.Same(t, src, Downsample(src, 8))

	dst := Downsample(src, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), dst.Bounds())
	assert.InDelta(t, 200, int(dst.NRGBAAt(2, 2).R), 2)
	assert.InDelta(t, 200, int(dst.NRGBAAt(2, 2).A), 2)
}

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"out/a.webp": FormatWebP,
		"a.TGA":      FormatTGA,
		"a.png":      FormatPNG,
		"a":          FormatWebP,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFor(path), path)
	}
}

func TestEncode(t *testing.T) {
	s := quad()
	img := Render(s, s.Points, frontOptions())

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, FormatPNG))
		got, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), got.Bounds())
	})

	t.Run("tga", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, FormatTGA))
		got, err := tga.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), got.Bounds())
	})

	t.Run("webp", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, FormatWebP))
		data := buf.Bytes()
		require.Greater(t, len(data), 12)
		assert.Equal(t, "RIFF", string(data[:4]))
		assert.Equal(t, "WEBP", string(data[8:12]))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Encode(&bytes.Buffer{}, img, "bmp"))
	})
}

func TestSave(t *testing.T) {
	s := quad()
	path := filepath.Join(t.TempDir(), "renders", "quad.png")
	require.NoError(t, Save(path, Render(s, s.Points, frontOptions())))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
