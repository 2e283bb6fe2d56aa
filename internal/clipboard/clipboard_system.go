package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"

	sysclip "golang.design/x/clipboard"
)

var (
	sysInitOnce sync.Once
	sysInitErr  error
)

// SystemBackend reads and writes text and PNG images through the platform
// clipboard.
type SystemBackend struct{}

// NewSystemBackend initialises the platform clipboard. It fails on hosts
// without a display server.
func NewSystemBackend() (*SystemBackend, error) {
	sysInitOnce.Do(func() {
		sysInitErr = sysclip.Init()
	})
	if sysInitErr != nil {
		return nil, fmt.Errorf("failed to initialise system clipboard: %w", sysInitErr)
	}
	return &SystemBackend{}, nil
}

func (b *SystemBackend) Name() string { return "system" }

func (b *SystemBackend) ReadCurrent(ctx context.Context) (*RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text := sysclip.Read(sysclip.FmtText); len(text) > 0 {
		p := TextPayload(string(text))
		return &p, nil
	}
	data := sysclip.Read(sysclip.FmtImage)
	if len(data) == 0 {
		return nil, nil
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	p := ImagePayload(img)
	return &p, nil
}

func (b *SystemBackend) Write(ctx context.Context, payload RawPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case payload.HasText:
		sysclip.Write(sysclip.FmtText, []byte(payload.Text))
	case payload.Image != nil:
		var buf bytes.Buffer
		if err := png.Encode(&buf, payload.Image); err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}
		sysclip.Write(sysclip.FmtImage, buf.Bytes())
	default:
		return ErrUnsupportedPayload
	}
	return nil
}

func (b *SystemBackend) Close() error { return nil }
