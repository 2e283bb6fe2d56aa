package format

import (
	"fmt"

	"github.com/berrythewa/cliprecall/internal/types"
)

// FormatImage describes an image record; bitmaps are never rendered.
func FormatImage(v *types.RecordView, opts Options) string {
	desc := fmt.Sprintf("[image %dx%d, %s pixels]", v.Width, v.Height, formatCount(v.Width*v.Height))
	if v.Fingerprint == "" {
		return desc + " " + ColorizeIf("(no fingerprint)", Yellow, opts.UseColors)
	}
	return desc
}

func FormatImagePreview(v *types.RecordView, maxLen int) string {
	return TruncateText(fmt.Sprintf("[image %dx%d]", v.Width, v.Height), maxLen)
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
