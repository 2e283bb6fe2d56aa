package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errNotImage = errors.New("data is not a recognised image")

// isURL reports whether text should be classified as a URL. The scheme
// prefix is checked on the raw text, so leading whitespace makes it plain
// text; the remainder must parse as an absolute URL with a host.
func isURL(text string) bool {
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return false
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	return u.Host != ""
}

// isImage checks for the magic bytes of the formats DecodeImage understands.
func isImage(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
	case bytes.HasPrefix(data, []byte("BM")):
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
	default:
		return false
	}
	return true
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP bytes read off the
// clipboard.
func DecodeImage(data []byte) (image.Image, error) {
	if !isImage(data) {
		return nil, errNotImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
