package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ShapeMatcher locates an image URL in one known result layout.
type ShapeMatcher struct {
	Name string
	// Path is a gjson path to the URL.
	Path string
	// ArrayPath, when set, must hold a JSON array for the shape to match.
	// gjson resolves "images.0" on objects keyed "0" as well.
	ArrayPath string
	// FailureDetail is recorded as error_detail when the download fails.
	FailureDetail string
}

// ResultShapes lists the result layouts in the order they are tried.
var ResultShapes = []ShapeMatcher{
	{
		Name:          "image",
		Path:          "image.url",
		FailureDetail: "Failed to convert image to base64, using URL directly",
	},
	{
		Name:          "images",
		Path:          "images.0.url",
		ArrayPath:     "images",
		FailureDetail: "Failed to convert image from images array to base64, using URL directly",
	},
	{
		Name:          "nested",
		Path:          "result.image.url",
		FailureDetail: "Failed to convert nested image to base64, using URL directly",
	},
}

// OutputPaths lists, in priority order, where a caller finds the image to
// show in a normalized payload. Each must hold a string.
var OutputPaths = []string{
	"imageBase64",
	"image.url",
	"images.0",
	"output.0",
	"result.image.url",
}

// Fetcher downloads the bytes behind a result URL.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// CandidateURL returns the first matching shape in payload and its URL.
//
// A shape matches when the key exists, even if the value is not a usable URL;
// the download then fails and the payload is annotated instead.
func CandidateURL(payload []byte) (ShapeMatcher, string, bool) {
	for _, m := range ResultShapes {
		if m.ArrayPath != "" && !gjson.GetBytes(payload, m.ArrayPath).IsArray() {
			continue
		}
		if r := gjson.GetBytes(payload, m.Path); r.Exists() {
			return m, r.String(), true
		}
	}
	return ShapeMatcher{}, "", false
}

// Normalize inlines the result image as imageBase64.
//
// Vendor fields are preserved. When the download fails the payload gains an
// error_detail field instead, and when no shape matches it is returned as is.
func Normalize(ctx context.Context, payload []byte, f Fetcher, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, u, ok := CandidateURL(payload)
	if !ok {
		logger.InfoContext(ctx, "no image URL found in result, returning original result")
		return payload, nil
	}

	logger.InfoContext(ctx, "downloading result image", "shape", m.Name, "url", u)
	data, err := f.FetchBytes(ctx, u)
	if err != nil {
		logger.WarnContext(ctx, "failed to download result image", "shape", m.Name, "url", u, "error", err)
		return annotate(payload, "error_detail", m.FailureDetail)
	}
	return annotate(payload, "imageBase64", base64.StdEncoding.EncodeToString(data))
}

func annotate(payload []byte, key, value string) ([]byte, error) {
	out, err := sjson.SetBytes(payload, key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate result: %w", err)
	}
	return out, nil
}

// SelectOutput picks the single image reference a caller should display:
// inline base64 when present, otherwise a URL. It reports false when the
// payload holds none of OutputPaths as a string.
func SelectOutput(payload []byte) (string, bool) {
	for _, p := range OutputPaths {
		if r := gjson.GetBytes(payload, p); r.Type == gjson.String {
			return r.Str, true
		}
	}
	return "", false
}
