package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxPhotoBytes bounds an uploaded photo.
const MaxPhotoBytes = 20 << 20

// MaxPhotoPixels bounds the decoded size of a photo. The header is checked
// before any pixels are decoded.
const MaxPhotoPixels = 50_000_000

// PhotoInfo describes a loaded photo.
type PhotoInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	// MimeType is sent to the generator alongside the photo bytes.
	MimeType   string `json:"mime_type"`
	ColorDepth string `json:"color_depth"`
	HasAlpha   bool   `json:"has_alpha"`
	SizeBytes  int    `json:"size_bytes"`
}

// Photo is an uploaded image used as the generation reference in photo mode.
// Data is kept as uploaded; it is never drawn onto the canvas.
type Photo struct {
	Data []byte
	Info PhotoInfo
}

// DecodePhoto validates data as an image and returns it as a Photo.
//
// mimeType is the type the uploader reported. When it is empty the type is
// sniffed from the bytes. Only image/* types are accepted.
func DecodePhoto(data []byte, mimeType string) (*Photo, error) {
	if len(data) == 0 {
		return nil, errors.New("photo is empty")
	}
	if len(data) > MaxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported photo type: %s", mimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return nil, fmt.Errorf("photo dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, MaxPhotoPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	info := PhotoInfo{
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		Format:     format,
		MimeType:   mimeType,
		ColorDepth: "8-bit",
		SizeBytes:  len(data),
	}
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	case *image.Gray16:
		info.ColorDepth = "16-bit"
	}

	return &Photo{Data: data, Info: info}, nil
}

// ReadPhoto loads a photo from disk. The type is sniffed from the contents.
func ReadPhoto(path string) (*Photo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	if st.Size() > MaxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return DecodePhoto(data, "")
}
