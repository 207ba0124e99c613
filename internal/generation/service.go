package generation

import (
	"context"
	"log/slog"
	"strings"
)

// Request is the inbound generation request. The JSON form is the body of
// POST /api/generate.
type Request struct {
	// Image is base64 image data without a data: prefix.
	Image string `json:"image"`
	// Prompt is the user's description; it may be empty.
	Prompt string `json:"prompt,omitempty"`
	// MimeType of Image. Values outside image/* fall back to image/png.
	MimeType string `json:"mimeType,omitempty"`
	// ImageSize is "<w>x<h>" for sketches and "photo" for photos. Informational.
	ImageSize string `json:"imageSize,omitempty"`
}

// Service runs submit, wait and normalize for one request.
type Service struct {
	client  *Client
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService creates a service. A nil logger uses slog.Default().
func NewService(client *Client, fetcher Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, fetcher: fetcher, logger: logger}
}

// Generate returns the normalized result payload for req.
func (s *Service) Generate(ctx context.Context, req Request) ([]byte, error) {
	if s.client.key == "" {
		return nil, ErrMissingKey
	}
	if req.Image == "" {
		return nil, ErrMissingImage
	}

	prompt := EnhancePrompt(req.Prompt)
	s.logger.InfoContext(ctx, "generation requested",
		"image_size", req.ImageSize, "custom_prompt", strings.TrimSpace(req.Prompt) != "")

	job, err := s.client.Submit(ctx, Submission{
		ImageBase64: req.Image,
		MimeType:    submissionMimeType(req.MimeType),
		Prompt:      prompt,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.client.Wait(ctx, job)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "generation completed", "request_id", job.RequestID, "attempts", job.Attempts)

	return Normalize(ctx, result, s.fetcher, s.logger)
}

func submissionMimeType(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if strings.HasPrefix(hint, "image/") && !strings.ContainsAny(hint, ";, ") {
		return hint
	}
	return "image/png"
}
