// Package compression gzips record payloads that are worth compressing.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// DefaultThreshold is the payload size below which compression is skipped.
const DefaultThreshold = 1024

// Compress gzips data when it is at least threshold bytes long. The second
// return value reports whether the output is compressed.
func Compress(data []byte, threshold int) ([]byte, bool, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(data) < threshold {
		return data, false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, false, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, false, fmt.Errorf("gzip close: %w", err)
	}

	// not worth it for incompressible payloads
	if buf.Len() >= len(data) {
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return out, nil
}
