// Package types defines the clipboard record model shared by the monitor,
// the history store and the query surface.
package types

import (
	"image"
)

// ContentType represents the type of clipboard content
type ContentType string

const (
	TypeText  ContentType = "text"
	TypeURL   ContentType = "url"
	TypeImage ContentType = "image"
)

// Content is the payload of a Record. The set of implementations is closed:
// Text, URL and Image are the only variants, and callers are expected to
// switch over all three.
type Content interface {
	Type() ContentType
	isContent()
}

// Text is plain text content.
type Text string

// URL is text content that parsed as an http or https URL.
type URL string

// Image is a decoded bitmap together with its content fingerprint.
type Image struct {
	Bitmap      image.Image
	Fingerprint Fingerprint
}

func (Text) Type() ContentType  { return TypeText }
func (URL) Type() ContentType   { return TypeURL }
func (Image) Type() ContentType { return TypeImage }

func (Text) isContent()  {}
func (URL) isContent()   {}
func (Image) isContent() {}

// Width returns the bitmap width, or 0 when there is no bitmap.
func (i Image) Width() int {
	if i.Bitmap == nil {
		return 0
	}
	return i.Bitmap.Bounds().Dx()
}

// Height returns the bitmap height, or 0 when there is no bitmap.
func (i Image) Height() int {
	if i.Bitmap == nil {
		return 0
	}
	return i.Bitmap.Bounds().Dy()
}

// ParseContentType converts a user supplied string to a ContentType.
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(s) {
	case TypeText, TypeURL, TypeImage:
		return ContentType(s), true
	}
	return "", false
}
