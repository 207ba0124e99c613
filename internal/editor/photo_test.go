package editor

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePhoto_PNG(t *testing.T) {
	data := pngBytes(t, 8, 6)

	p, err := DecodePhoto(data, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 8, p.Info.Width)
	assert.Equal(t, 6, p.Info.Height)
	assert.Equal(t, "png", p.Info.Format)
	assert.Equal(t, "image/png", p.Info.MimeType)
	assert.True(t, p.Info.HasAlpha)
	assert.Equal(t, "8-bit", p.Info.ColorDepth)
	assert.Equal(t, len(data), p.Info.SizeBytes)
	assert.Equal(t, data, p.Data, "bytes are kept as uploaded")
}

func TestDecodePhoto_JPEGSniffed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 10))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	p, err := DecodePhoto(buf.Bytes(), "")
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", p.Info.MimeType)
	assert.Equal(t, "jpeg", p.Info.Format)
	assert.Equal(t, 16, p.Info.Width)
	assert.False(t, p.Info.HasAlpha)
}

func TestDecodePhoto_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
	}{
		{"empty", nil, "image/png"},
		{"not an image type", pngBytes(t, 2, 2), "text/plain"},
		{"garbage", []byte("definitely not pixels"), "image/png"},
		{"sniffed text", []byte("hello world"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePhoto(tt.data, tt.mimeType)
			assert.Error(t, err)
		})
	}
}

// pngWithDeclaredSize encodes a tiny gray PNG and rewrites its IHDR chunk to
// claim w x h pixels.
func pngWithDeclaredSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodePhoto_RejectsOversizedDimensions(t *testing.T) {
	data := pngWithDeclaredSize(t, 20000, 20000)
	require.Less(t, len(data), 100)

	_, err := DecodePhoto(data, "image/png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "20000x20000")
}

func TestReadPhoto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.png")
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	img.SetGray(1, 1, color.Gray{Y: 90})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	p, err := ReadPhoto(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.Info.MimeType, "type comes from contents, not the extension")

	_, err = ReadPhoto(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
