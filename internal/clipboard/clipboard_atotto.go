package clipboard

import (
	"context"
	"errors"
	"fmt"

	atottoClip "github.com/atotto/clipboard"
)

// TextBackend is a text-only fallback built on the atotto/clipboard
// library, which shells out to xclip, xsel, wl-clipboard or pbcopy.
type TextBackend struct{}

// NewTextBackend returns a TextBackend, or an error when no clipboard
// utility is installed.
func NewTextBackend() (*TextBackend, error) {
	if atottoClip.Unsupported {
		return nil, errors.New("no clipboard utility found")
	}
	return &TextBackend{}, nil
}

func (b *TextBackend) Name() string { return "text" }

func (b *TextBackend) ReadCurrent(ctx context.Context) (*RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := atottoClip.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	p := TextPayload(text)
	return &p, nil
}

func (b *TextBackend) Write(ctx context.Context, payload RawPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !payload.HasText {
		return fmt.Errorf("only text content is supported for writing: %w", ErrUnsupportedPayload)
	}
	return atottoClip.WriteAll(payload.Text)
}

func (b *TextBackend) Close() error { return nil }
