package clipboard

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/berrythewa/cliprecall/internal/types"
)

func TestClassify_Text(t *testing.T) {
	tests := []struct {
		in   string
		want types.ContentType
	}{
		{"http://a.com", types.TypeURL},
		{"https://example.com/path?q=1", types.TypeURL},
		{"http://a.com  ", types.TypeURL},
		{"httpx://a.com", types.TypeText},
		{"  http://a.com", types.TypeText},
		{"ftp://a.com", types.TypeText},
		{"http://", types.TypeText},
		{"http:// a.com", types.TypeText},
		{"HTTP://A.COM", types.TypeText},
		{"hello world", types.TypeText},
	}

	c := NewClassifier(0, clock.NewMock(), nil)
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rec := c.Classify(TextPayload(tt.in))
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.Type())

			payload, ok := rec.Text()
			require.True(t, ok)
			assert.Equal(t, tt.in, payload, "payload is stored untrimmed")
		})
	}
}

func TestClassify_Blank(t *testing.T) {
	c := NewClassifier(0, nil, nil)
	assert.Nil(t, c.Classify(TextPayload("")))
	assert.Nil(t, c.Classify(TextPayload(" \t\r\n")))
	assert.Nil(t, c.Classify(RawPayload{}))
}

func TestClassify_UsesClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(42 * time.Hour)

	rec := NewClassifier(0, mock, nil).Classify(TextPayload("x"))
	require.NotNil(t, rec)
	assert.True(t, rec.Timestamp().Equal(mock.Now()))
}

func TestClassify_TextWinsOverImage(t *testing.T) {
	c := NewClassifier(0, nil, nil)
	rec := c.Classify(RawPayload{Text: "caption", HasText: true, Image: solidImage(1, 1, color.RGBA{A: 255})})
	require.NotNil(t, rec)
	assert.Equal(t, types.TypeText, rec.Type())
}

func TestClassify_Image(t *testing.T) {
	c := NewClassifier(0, nil, nil)

	rec := c.Classify(ImagePayload(solidImage(3, 2, color.RGBA{G: 128, A: 255})))
	require.NotNil(t, rec)
	assert.Equal(t, types.TypeImage, rec.Type())
	assert.Equal(t, "[image 3x2]", rec.Preview())
	assert.False(t, rec.Fingerprint().IsZero())
}

func TestClassify_ImageDegraded(t *testing.T) {
	c := NewClassifier(0, nil, nil)

	a := c.Classify(ImagePayload(image.NewRGBA(image.Rect(0, 0, 0, 4))))
	b := c.Classify(ImagePayload(image.NewRGBA(image.Rect(0, 0, 0, 4))))
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.Fingerprint().IsZero())
	assert.False(t, a.Equal(b), "degraded images never compare equal")
}

func TestDecodeImage(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	want, err := types.FingerprintImage(src)
	require.NoError(t, err)

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, bmp.Encode(&bmpBuf, src))

	for name, data := range map[string][]byte{"png": pngBuf.Bytes(), "bmp": bmpBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			img, err := DecodeImage(data)
			require.NoError(t, err)
			got, err := types.FingerprintImage(img)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
		})
	}

	_, err = DecodeImage([]byte("plain text"))
	assert.Error(t, err)

	_, err = DecodeImage([]byte{0x89, 'P', 'N', 'G', 0, 0})
	assert.Error(t, err)
}
