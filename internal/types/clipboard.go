package types

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultPreviewLength is the number of runes of text kept in a preview.
const DefaultPreviewLength = 100

// Record is a single classified clipboard value. A Record is never modified
// after construction; all fields are derived once in NewRecord.
type Record struct {
	id        string
	timestamp time.Time
	content   Content
	preview   string
}

// NewRecord creates a record with a fresh ID.
func NewRecord(content Content, ts time.Time, previewLen int) *Record {
	return NewRecordWithID(uuid.New().String(), content, ts, previewLen)
}

// NewRecordWithID creates a record with a known ID, used when replaying
// records from an archive.
func NewRecordWithID(id string, content Content, ts time.Time, previewLen int) *Record {
	return &Record{
		id:        id,
		timestamp: ts,
		content:   content,
		preview:   buildPreview(content, previewLen),
	}
}

func (r *Record) ID() string           { return r.id }
func (r *Record) Timestamp() time.Time { return r.timestamp }
func (r *Record) Content() Content     { return r.content }
func (r *Record) Preview() string      { return r.preview }
func (r *Record) Type() ContentType    { return r.content.Type() }

// Text returns the payload of a Text or URL record.
func (r *Record) Text() (string, bool) {
	switch c := r.content.(type) {
	case Text:
		return string(c), true
	case URL:
		return string(c), true
	}
	return "", false
}

// Fingerprint returns the image fingerprint, or the zero value for text.
func (r *Record) Fingerprint() Fingerprint {
	if img, ok := r.content.(Image); ok {
		return img.Fingerprint
	}
	return Fingerprint{}
}

// Equal reports whether two records hold the same value. Text and URL
// records compare type and payload exactly; images compare fingerprints.
// A record is always equal to itself, even with a zero fingerprint.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil || r == other {
		return r == other
	}
	switch a := r.content.(type) {
	case Text:
		b, ok := other.content.(Text)
		return ok && a == b
	case URL:
		b, ok := other.content.(URL)
		return ok && a == b
	case Image:
		b, ok := other.content.(Image)
		return ok && a.Fingerprint.Equal(b.Fingerprint)
	}
	return false
}

func (r *Record) String() string {
	return fmt.Sprintf("%s(%s)", r.Type(), r.preview)
}

func buildPreview(content Content, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultPreviewLength
	}
	switch c := content.(type) {
	case Text:
		s := string(c)
		if utf8.RuneCountInString(s) <= maxLen {
			return s
		}
		return string([]rune(s)[:maxLen]) + "..."
	case URL:
		return string(c)
	case Image:
		return fmt.Sprintf("[image %dx%d]", c.Width(), c.Height())
	}
	return ""
}

// RecordView is the serialisable form of a Record sent to CLI clients.
type RecordView struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	Preview     string      `json:"preview"`
	Text        string      `json:"text,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Fingerprint string      `json:"fingerprint,omitempty"`
}

// View converts the record to its serialisable form.
func (r *Record) View() RecordView {
	v := RecordView{
		ID:        r.id,
		Type:      r.Type(),
		Timestamp: r.timestamp,
		Preview:   r.preview,
	}
	switch c := r.content.(type) {
	case Text:
		v.Text = string(c)
	case URL:
		v.Text = string(c)
	case Image:
		v.Width = c.Width()
		v.Height = c.Height()
		v.Fingerprint = c.Fingerprint.String()
	}
	return v
}

// Views converts a slice of records.
func Views(records []*Record) []RecordView {
	out := make([]RecordView, len(records))
	for i, r := range records {
		out[i] = r.View()
	}
	return out
}
