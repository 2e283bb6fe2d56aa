package types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Fingerprint identifies image content independently of how the pixels are
// held in memory. It wraps an MD5 multihash of the canonical pixel encoding.
// The zero value is the degraded fingerprint and never equals anything.
type Fingerprint struct {
	mh string
}

var errNilImage = errors.New("nil image")

// NewFingerprint hashes already canonical bytes.
func NewFingerprint(canonical []byte) (Fingerprint, error) {
	h, err := multihash.Sum(canonical, multihash.MD5, -1)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash image: %w", err)
	}
	return Fingerprint{mh: string(h)}, nil
}

// FingerprintImage canonicalises img and hashes the result.
func FingerprintImage(img image.Image) (fp Fingerprint, err error) {
	defer func() {
		if r := recover(); r != nil {
			fp, err = Fingerprint{}, fmt.Errorf("canonicalize image: %v", r)
		}
	}()
	canonical, err := CanonicalPixels(img)
	if err != nil {
		return Fingerprint{}, err
	}
	return NewFingerprint(canonical)
}

// ParseFingerprint decodes the string form produced by Fingerprint.String.
func ParseFingerprint(s string) (Fingerprint, error) {
	if s == "" {
		return Fingerprint{}, nil
	}
	c, err := cid.Decode(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	return Fingerprint{mh: string(c.Hash())}, nil
}

// IsZero reports whether this is the degraded (empty) fingerprint.
func (f Fingerprint) IsZero() bool { return f.mh == "" }

// Equal compares two fingerprints. Degraded fingerprints are always distinct.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return !f.IsZero() && f.mh == other.mh
}

// Digest returns the raw 128-bit digest.
func (f Fingerprint) Digest() []byte {
	if f.IsZero() {
		return nil
	}
	dm, err := multihash.Decode([]byte(f.mh))
	if err != nil {
		return nil
	}
	return dm.Digest
}

// String renders the fingerprint as a CIDv1 over the raw codec.
func (f Fingerprint) String() string {
	if f.IsZero() {
		return ""
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(f.mh)).String()
}

// CanonicalPixels renders img onto an opaque black RGBA canvas and returns
// the width and height as big-endian uint32 followed by row-major RGB bytes.
// Alpha, colour model and bounds offset of the source do not affect the
// output.
func CanonicalPixels(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errNilImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)

	out := make([]byte, 8, 8+w*h*3)
	binary.BigEndian.PutUint32(out[0:4], uint32(w))
	binary.BigEndian.PutUint32(out[4:8], uint32(h))
	for y := 0; y < h; y++ {
		row := canvas.Pix[y*canvas.Stride : y*canvas.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x], row[x+1], row[x+2])
		}
	}
	return out, nil
}
