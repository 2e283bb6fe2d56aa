package format

import (
	"net/url"

	"github.com/berrythewa/cliprecall/internal/types"
)

// FormatURL renders a URL record, underlined when colors are on.
func FormatURL(v *types.RecordView, opts Options) string {
	link := v.Text
	if opts.MaxWidth > 0 {
		link = TruncateText(link, opts.MaxWidth)
	}
	return ColorizeIf(link, Underline+Blue, opts.UseColors)
}

func FormatURLPreview(v *types.RecordView, maxLen int) string {
	return TruncateText(flatten(v.Text), maxLen)
}

// URLHost returns the host part of a URL record, or "" if it cannot be parsed.
func URLHost(v *types.RecordView) string {
	u, err := url.Parse(flatten(v.Text))
	if err != nil {
		return ""
	}
	return u.Host
}
