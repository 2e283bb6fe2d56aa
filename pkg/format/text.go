package format

import (
	"strings"

	"github.com/berrythewa/cliprecall/internal/types"
)

// FormatText renders the full text of a record within the line and width
// limits of opts.
func FormatText(v *types.RecordView, opts Options) string {
	if v == nil || v.Text == "" {
		return ""
	}
	text := v.Text
	if opts.MaxLines > 0 {
		text = TruncateLines(text, opts.MaxLines)
	}
	if opts.MaxWidth > 0 {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = TruncateText(line, opts.MaxWidth)
		}
		text = strings.Join(lines, "\n")
	}
	return text
}

// FormatTextPreview flattens text onto one line and truncates it.
func FormatTextPreview(v *types.RecordView, maxLen int) string {
	if v == nil {
		return ""
	}
	text := v.Text
	if text == "" {
		text = v.Preview
	}
	return TruncateText(flatten(text), maxLen)
}

var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func flatten(s string) string {
	return strings.TrimSpace(flattener.Replace(s))
}
