package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/berrythewa/cliprecall/internal/types"
)

var refNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func plain() Options {
	opts := PlainOptions()
	opts.Now = func() time.Time { return refNow }
	return opts
}

func sampleViews() []types.RecordView {
	return []types.RecordView{
		{ID: "aaaa1111-2222", Type: types.TypeURL, Timestamp: refNow.Add(-30 * time.Second), Text: "https://example.com/path"},
		{ID: "bbbb1111-2222", Type: types.TypeText, Timestamp: refNow.Add(-5 * time.Minute), Text: "line one\nline two"},
		{ID: "cccc1111-2222", Type: types.TypeImage, Timestamp: refNow.Add(-3 * time.Hour), Width: 640, Height: 480, Fingerprint: "bafkre"},
	}
}

func TestFormatRecord_Plain(t *testing.T) {
	views := sampleViews()

	out := FormatRecord(&views[0], plain())
	assert.Contains(t, out, "url")
	assert.Contains(t, out, "ID: aaaa1111-2222")
	assert.Contains(t, out, "Copied: just now")
	assert.Contains(t, out, "Host: example.com")
	assert.Contains(t, out, "https://example.com/path")
	assert.NotContains(t, out, "\033[")

	out = FormatRecord(&views[2], plain())
	assert.Contains(t, out, "[image 640x480, 307.2K pixels]")
	assert.Contains(t, out, "Copied: 3 hours ago")
}

func TestFormatRecord_Compact(t *testing.T) {
	views := sampleViews()
	opts := plain()
	opts.Compact = true

	out := FormatRecord(&views[1], opts)
	assert.Equal(t, "text bbbb1111 line one line two", out)
	assert.NotContains(t, out, "\n")
}

func TestFormatList(t *testing.T) {
	opts := plain()
	opts.Compact = true

	out := FormatList(sampleViews(), opts)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Clipboard history (3 entries)", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "[1] url"))
	assert.True(t, strings.HasPrefix(lines[4], "[3] image"))

	assert.Equal(t, "No clipboard history", FormatList(nil, opts))
}

func TestColorsAndIcons(t *testing.T) {
	views := sampleViews()
	opts := DefaultOptions()
	opts.Now = func() time.Time { return refNow }

	out := FormatRecord(&views[0], opts)
	assert.Contains(t, out, "🔗")
	assert.Contains(t, out, Blue+"url"+Reset)
}

func TestFormatText_Limits(t *testing.T) {
	v := &types.RecordView{Type: types.TypeText, Text: "a\nb\nc\nd"}
	opts := plain()
	opts.MaxLines = 2
	assert.Equal(t, "a\nb\n... (2 more lines)", FormatText(v, opts))

	v.Text = strings.Repeat("x", 20)
	opts.MaxWidth = 10
	assert.Equal(t, "xxxxxxx...", FormatText(v, opts))
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"hello", 2, "he"},
		{"hello", 0, "hello"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateText(tt.in, tt.max), "TruncateText(%q, %d)", tt.in, tt.max)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{90 * time.Second, "1 minute ago"},
		{15 * time.Minute, "15 minutes ago"},
		{5 * time.Hour, "5 hours ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{30 * 24 * time.Hour, "Jan 31, 2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRelativeTime(refNow.Add(-tt.ago), refNow))
	}
}

func TestStats(t *testing.T) {
	s := ComputeStats(sampleViews(), 100)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, map[types.ContentType]int{types.TypeText: 1, types.TypeURL: 1, types.TypeImage: 1}, s.ByType)
	assert.Equal(t, refNow.Add(-30*time.Second), s.Newest)

	out := FormatStats(s, plain())
	assert.Contains(t, out, "Entries: 3 / 100")
	assert.Contains(t, out, "Oldest entry: 3 hours ago")
	assert.Less(t, strings.Index(out, "text: 1"), strings.Index(out, "image: 1"))
}
