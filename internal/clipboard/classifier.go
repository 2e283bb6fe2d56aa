package clipboard

import (
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/types"
)

// Classifier turns raw clipboard payloads into records.
type Classifier struct {
	previewLen int
	clock      clock.Clock
	logger     *zap.Logger
}

// NewClassifier creates a Classifier. A non-positive previewLen selects
// types.DefaultPreviewLength; nil clock and logger select the wall clock and
// a no-op logger.
func NewClassifier(previewLen int, clk clock.Clock, logger *zap.Logger) *Classifier {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		previewLen: previewLen,
		clock:      clk,
		logger:     logger,
	}
}

// Classify builds a record from raw, or returns nil when there is nothing
// worth recording: an empty payload or text that is only whitespace.
func (c *Classifier) Classify(raw RawPayload) *types.Record {
	now := c.clock.Now()

	if raw.HasText {
		if strings.TrimSpace(raw.Text) == "" {
			return nil
		}
		if isURL(raw.Text) {
			return types.NewRecord(types.URL(raw.Text), now, c.previewLen)
		}
		return types.NewRecord(types.Text(raw.Text), now, c.previewLen)
	}

	if raw.Image == nil {
		return nil
	}
	fp, err := types.FingerprintImage(raw.Image)
	if err != nil {
		b := raw.Image.Bounds()
		c.logger.Warn("Image fingerprint degraded",
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
			zap.Error(err))
	}
	return types.NewRecord(types.Image{Bitmap: raw.Image, Fingerprint: fp}, now, c.previewLen)
}
