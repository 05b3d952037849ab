// Package artwork loads, scales and encodes cover images.
package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/nfnt/resize"

	"github.com/desertthunder/tonearm/internal/shared"
)

// MaxSize bounds the edge length of a scaled image.
const MaxSize = 2048

// Service implements cover art loading on the local filesystem.
type Service struct{}

// New returns a Service.
func New() *Service {
	return &Service{}
}

// Open decodes the image at path.
func (s *Service) Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Decode decodes an in-memory image, such as one embedded in an audio file.
func (s *Service) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return img, nil
}

// Resize scales img to a size by size square, capped at [MaxSize].
func (s *Service) Resize(img image.Image, size int) image.Image {
	if size <= 0 {
		return img
	}
	if size > MaxSize {
		size = MaxSize
	}
	return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
}

// EncodePNG writes img to w as PNG.
func (s *Service) EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Embedded returns the picture stored in an audio file's tags and its MIME type.
func (s *Service) Embedded(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrNoArtwork, err)
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", shared.ErrNoArtwork
	}

	mime := pic.MIMEType
	if mime == "" {
		mime = ContentType("cover." + pic.Ext)
	}
	return pic.Data, mime, nil
}

// ContentType guesses an image MIME type from a file name.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
