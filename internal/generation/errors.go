package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned before any network call when no API key is configured.
	ErrMissingKey = errors.New("Missing FAL_KEY in environment")

	// ErrNoRequestID is returned when the queue accepts a submission without a request id.
	ErrNoRequestID = errors.New("No request_id in response")

	// ErrMaxRetries is returned when the job never reaches a terminal status.
	ErrMaxRetries = errors.New("Max retries reached waiting for image generation")

	// ErrMissingImage is returned when a Request carries no image data.
	ErrMissingImage = errors.New("image is required")
)

// SubmissionError is a non-2xx answer from the submit endpoint. The body is
// kept verbatim so it can be passed through to the caller unchanged.
type SubmissionError struct {
	Status int
	Body   []byte
}

func (e *SubmissionError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("submission failed with status %d", e.Status)
	}
	return string(e.Body)
}

// JobFailedError reports a FAILED status. Payload is the status response.
type JobFailedError struct {
	Payload []byte
}

func (e *JobFailedError) Error() string {
	return "Request failed: " + string(e.Payload)
}

// ResultError is a non-2xx answer while fetching a completed job's result.
type ResultError struct {
	Status int
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("Failed to get result: %d", e.Status)
}

// StatusError is a non-2xx answer from the status endpoint. It is retried.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status check failed with code %d", e.Status)
}
