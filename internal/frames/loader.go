package frames

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/webp"

	"holoquilt/internal/postprocess"
)

// Format is an output image encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ParseFormat accepts "webp" or "png" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatWebP, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("frames: unknown image format %q", s)
}

// Ext returns the file extension with its dot.
func (f Format) Ext() string { return "." + string(f) }

// LoadImage decodes a PNG, JPEG, TGA or WebP file into NRGBA.
func LoadImage(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frames: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("frames: decode %s: %w", path, err)
	}
	return postprocess.ToNRGBA(img), nil
}

// SaveImage encodes img to path, creating parent directories. An empty
// format is taken from the path's extension.
func SaveImage(path string, img image.Image, format Format) error {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("frames: mkdir for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("frames: create %s: %w", path, err)
	}

	switch format {
	case FormatWebP:
		err = nativewebp.Encode(f, img, nil)
	case FormatPNG:
		err = png.Encode(f, img)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("frames: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("frames: close %s: %w", path, err)
	}
	return nil
}
