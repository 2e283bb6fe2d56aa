package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/berrythewa/cliprecall/internal/types"
)

// Stats summarises a history listing.
type Stats struct {
	Total    int
	Capacity int
	ByType   map[types.ContentType]int
	Oldest   time.Time
	Newest   time.Time
}

// ComputeStats derives Stats from a newest-first listing.
func ComputeStats(views []types.RecordView, capacity int) Stats {
	s := Stats{
		Total:    len(views),
		Capacity: capacity,
		ByType:   make(map[types.ContentType]int),
	}
	for _, v := range views {
		s.ByType[v.Type]++
	}
	if len(views) > 0 {
		s.Newest = views[0].Timestamp
		s.Oldest = views[len(views)-1].Timestamp
	}
	return s
}

// FormatStats renders Stats for display.
func FormatStats(s Stats, opts Options) string {
	title := "History statistics"
	if opts.UseIcons {
		title = "📊 " + title
	}
	parts := []string{ColorizeIf(title, BrightBlue, opts.UseColors), ""}

	usage := fmt.Sprintf("%d", s.Total)
	if s.Capacity > 0 {
		usage = fmt.Sprintf("%d / %d", s.Total, s.Capacity)
	}
	parts = append(parts, statLine("Entries", usage, opts))

	if s.Total > 0 {
		now := opts.now()
		parts = append(parts,
			statLine("Newest entry", FormatRelativeTime(s.Newest, now), opts),
			statLine("Oldest entry", FormatRelativeTime(s.Oldest, now), opts))
	}

	if len(s.ByType) > 0 {
		parts = append(parts, "", ColorizeIf("Entries by type", BrightBlue, opts.UseColors))
		// fixed order so output is stable
		for _, ct := range []types.ContentType{types.TypeText, types.TypeURL, types.TypeImage} {
			n, ok := s.ByType[ct]
			if !ok {
				continue
			}
			icon := ""
			if opts.UseIcons {
				icon = ContentIcons[ct] + " "
			}
			parts = append(parts, fmt.Sprintf("  %s%s: %d", icon, ColorizeIf(string(ct), ContentColors[ct], opts.UseColors), n))
		}
	}

	return strings.Join(parts, "\n")
}

func statLine(label, value string, opts Options) string {
	return fmt.Sprintf("  %s %s", ColorizeIf(label+":", BrightCyan, opts.UseColors), value)
}
