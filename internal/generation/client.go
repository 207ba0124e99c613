package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the fal.ai queue host.
const DefaultBaseURL = "https://queue.fal.run"

const (
	submitPath   = "/fal-ai/flux/dev/image-to-image"
	requestsPath = "/fal-ai/flux/requests/"

	// maxResponseBytes caps every vendor response body read into memory.
	maxResponseBytes = 32 << 20
)

// Queue statuses reported by the status endpoint.
const (
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
)

// Stage is the client-visible phase of a generation.
type Stage string

const (
	StageSubmitting Stage = "submitting"
	StageProcessing Stage = "processing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Job is a submitted generation. It lives for one Generate call.
type Job struct {
	RequestID string `json:"request_id"`
	Stage     Stage  `json:"stage"`
	Attempts  int    `json:"attempts"`
}

// Submission holds the model input for one job.
type Submission struct {
	// ImageBase64 is the image without a data: prefix.
	ImageBase64 string
	// MimeType labels the data URL; empty means image/png.
	MimeType string
	// Prompt is sent as is; see EnhancePrompt.
	Prompt string
}

// submitBody is the image-to-image request body.
type submitBody struct {
	ImageURL            string  `json:"image_url"`
	Prompt              string  `json:"prompt"`
	Strength            float64 `json:"strength"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	SyncMode            bool    `json:"sync_mode"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
	Policy     RetryPolicy
	// Timer drives the waits between status checks. Nil uses real time.
	Timer  backoff.Timer
	Logger *slog.Logger
}

// Client performs the vendor queue calls.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	policy  RetryPolicy
	timer   backoff.Timer
	logger  *slog.Logger
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		key:     opts.Key,
		http:    opts.HTTPClient,
		policy:  opts.Policy,
		timer:   opts.Timer,
		logger:  opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.policy.MaxAttempts == 0 {
		c.policy = DefaultRetryPolicy()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Submit queues a generation and returns its job.
func (c *Client) Submit(ctx context.Context, s Submission) (*Job, error) {
	if c.key == "" {
		return nil, ErrMissingKey
	}

	mime := s.MimeType
	if mime == "" {
		mime = "image/png"
	}
	body, err := json.Marshal(submitBody{
		ImageURL:            "data:" + mime + ";base64," + s.ImageBase64,
		Prompt:              s.Prompt,
		Strength:            0.95,
		NumInferenceSteps:   40,
		GuidanceScale:       3.5,
		SyncMode:            false,
		EnableSafetyChecker: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	c.logger.InfoContext(ctx, "submitting generation request",
		"prompt", s.Prompt, "mime_type", mime, "image_length", len(s.ImageBase64))

	status, resp, err := c.do(ctx, http.MethodPost, c.baseURL+submitPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to submit generation request: %w", err)
	}
	c.logger.DebugContext(ctx, "queue submission answered", "status", status)
	if status < 200 || status > 299 {
		return nil, &SubmissionError{Status: status, Body: resp}
	}
	if !gjson.ValidBytes(resp) {
		return nil, fmt.Errorf("invalid queue response: %q", truncate(resp, 200))
	}

	id := gjson.GetBytes(resp, "request_id")
	if id.Type != gjson.String || id.Str == "" {
		return nil, ErrNoRequestID
	}
	c.logger.InfoContext(ctx, "request queued", "request_id", id.Str)
	return &Job{RequestID: id.Str, Stage: StageProcessing}, nil
}

// Status fetches the queue status of a request. The raw response is returned
// alongside the parsed status string.
func (c *Client) Status(ctx context.Context, requestID string) (string, []byte, error) {
	status, resp, err := c.do(ctx, http.MethodGet, c.requestURL(requestID)+"/status", nil)
	if err != nil {
		return "", nil, err
	}
	if status < 200 || status > 299 {
		return "", resp, &StatusError{Status: status}
	}
	if !gjson.ValidBytes(resp) {
		return "", resp, fmt.Errorf("invalid status response: %q", truncate(resp, 200))
	}
	return gjson.GetBytes(resp, "status").String(), resp, nil
}

// Result fetches the payload of a completed request.
func (c *Client) Result(ctx context.Context, requestID string) ([]byte, error) {
	status, resp, err := c.do(ctx, http.MethodGet, c.requestURL(requestID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if status < 200 || status > 299 {
		return nil, &ResultError{Status: status}
	}
	if !gjson.ValidBytes(resp) {
		return nil, fmt.Errorf("invalid result payload: %q", truncate(resp, 200))
	}
	return resp, nil
}

// errNotTerminal marks poll attempts that should be retried.
var errNotTerminal = errors.New("job not in a terminal state")

// Wait polls the job until it completes and returns the result payload.
//
// Status check failures are logged and retried like a pending status. A
// FAILED status or a failed result fetch ends the loop at once. Cancelling
// ctx stops the loop between attempts.
func (c *Client) Wait(ctx context.Context, job *Job) ([]byte, error) {
	op := func() ([]byte, error) {
		job.Attempts++
		c.logger.DebugContext(ctx, "checking status",
			"request_id", job.RequestID, "attempt", job.Attempts)

		status, raw, err := c.Status(ctx, job.RequestID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			c.logger.WarnContext(ctx, "status check failed",
				"request_id", job.RequestID, "attempt", job.Attempts, "error", err)
			return nil, fmt.Errorf("%w: %w", errNotTerminal, err)
		}

		switch status {
		case StatusCompleted:
			result, err := c.Result(ctx, job.RequestID)
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			return result, nil
		case StatusFailed:
			return nil, backoff.Permanent(&JobFailedError{Payload: compact(raw)})
		default:
			c.logger.DebugContext(ctx, "job pending", "request_id", job.RequestID, "status", status)
			return nil, errNotTerminal
		}
	}

	result, err := backoff.RetryNotifyWithTimerAndData(op,
		backoff.WithContext(c.policy.BackOff(), ctx), nil, c.timer)
	switch {
	case err == nil:
		job.Stage = StageCompleted
		return result, nil
	case ctx.Err() != nil:
		job.Stage = StageFailed
		return nil, fmt.Errorf("polling request %s: %w", job.RequestID, ctx.Err())
	case errors.Is(err, errNotTerminal):
		job.Stage = StageFailed
		return nil, ErrMaxRetries
	default:
		job.Stage = StageFailed
		return nil, err
	}
}

func (c *Client) requestURL(requestID string) string {
	return c.baseURL + requestsPath + url.PathEscape(requestID)
}

// do sends one authorized request and reads the (capped) response body.
func (c *Client) do(ctx context.Context, method, u string, body []byte) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func compact(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
