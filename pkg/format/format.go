// Package format renders history entries for the terminal.
package format

import (
	"fmt"
	"strings"

	"github.com/berrythewa/cliprecall/internal/types"
)

// Formatter renders records using a fixed set of options.
type Formatter struct {
	options Options
}

func New(opts Options) *Formatter {
	return &Formatter{options: opts}
}

func NewDefault() *Formatter {
	return New(DefaultOptions())
}

// FormatRecord renders a single entry.
func (f *Formatter) FormatRecord(v *types.RecordView) string {
	if v == nil {
		return ColorizeIf("No content", Gray, f.options.UseColors)
	}

	header := f.formatHeader(v)
	if f.options.Compact {
		return header + " " + DimIf(f.formatPreview(v, 60), f.options.UseColors)
	}

	parts := []string{header}
	if f.options.ShowMetadata {
		parts = append(parts, f.formatMetadata(v))
	}
	if body := f.formatBody(v); body != "" {
		parts = append(parts, CreateBox("Content", body, f.options))
	}
	return strings.Join(parts, "\n")
}

// FormatList renders a newest-first listing with 1-based positions.
func (f *Formatter) FormatList(views []types.RecordView) string {
	if len(views) == 0 {
		return ColorizeIf("No clipboard history", Gray, f.options.UseColors)
	}

	title := fmt.Sprintf("Clipboard history (%d entries)", len(views))
	if f.options.UseIcons {
		title = "📋 " + title
	}
	parts := []string{ColorizeIf(title, BrightBlue, f.options.UseColors), ""}

	for i := range views {
		index := DimIf(fmt.Sprintf("[%d]", i+1), f.options.UseColors)
		if f.options.Compact {
			parts = append(parts, index+" "+f.FormatRecord(&views[i]))
			continue
		}
		parts = append(parts, index, f.FormatRecord(&views[i]))
		if i < len(views)-1 {
			parts = append(parts, CreateSeparator(f.options))
		}
	}
	return strings.Join(parts, "\n")
}

func (f *Formatter) FormatStats(s Stats) string {
	return FormatStats(s, f.options)
}

func (f *Formatter) formatHeader(v *types.RecordView) string {
	var parts []string
	if f.options.UseIcons {
		if icon, ok := ContentIcons[v.Type]; ok {
			parts = append(parts, icon)
		}
	}
	parts = append(parts, ColorizeIf(string(v.Type), ContentColors[v.Type], f.options.UseColors))
	if f.options.Compact {
		parts = append(parts, DimIf(shortID(v.ID), f.options.UseColors))
	}
	return strings.Join(parts, " ")
}

func (f *Formatter) formatMetadata(v *types.RecordView) string {
	parts := []string{
		"ID: " + v.ID,
		"Copied: " + FormatRelativeTime(v.Timestamp, f.options.now()),
	}
	switch v.Type {
	case types.TypeURL:
		if host := URLHost(v); host != "" {
			parts = append(parts, "Host: "+host)
		}
	case types.TypeImage:
		if v.Fingerprint != "" {
			parts = append(parts, "Fingerprint: "+TruncateText(v.Fingerprint, 24))
		}
	default:
		parts = append(parts, fmt.Sprintf("Length: %d", len([]rune(v.Text))))
	}
	return DimIf(strings.Join(parts, " • "), f.options.UseColors)
}

func (f *Formatter) formatBody(v *types.RecordView) string {
	switch v.Type {
	case types.TypeURL:
		return FormatURL(v, f.options)
	case types.TypeImage:
		return FormatImage(v, f.options)
	default:
		return FormatText(v, f.options)
	}
}

func (f *Formatter) formatPreview(v *types.RecordView, maxLen int) string {
	if f.options.MaxWidth > 0 && f.options.MaxWidth < maxLen {
		maxLen = f.options.MaxWidth
	}
	switch v.Type {
	case types.TypeURL:
		return FormatURLPreview(v, maxLen)
	case types.TypeImage:
		return FormatImagePreview(v, maxLen)
	default:
		if preview := FormatTextPreview(v, maxLen); preview != "" {
			return preview
		}
		return "(empty)"
	}
}

// shortID keeps the first UUID group, enough to pick an entry by eye.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// FormatRecord renders a single entry with the given options.
func FormatRecord(v *types.RecordView, opts Options) string {
	return New(opts).FormatRecord(v)
}

// FormatList renders a listing with the given options.
func FormatList(views []types.RecordView, opts Options) string {
	return New(opts).FormatList(views)
}
