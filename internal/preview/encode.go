package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Image formats accepted by Encode.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
	FormatPNG  = "png"
)

// FormatFor picks the format from a file extension, defaulting to WebP.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		return FormatTGA
	case ".png":
		return FormatPNG
	default:
		return FormatWebP
	}
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("preview: unknown format %q", format)
	}
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(f, img, FormatFor(path)); err != nil {
		f.Close()
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}
