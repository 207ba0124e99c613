// Package generation talks to the fal.ai queue API that turns a sketch or
// photo into a generated image.
//
// A generation runs as one sequential pipeline:
//
//  1. Submit: the image (base64) and an enhanced prompt are posted to the
//     image-to-image endpoint, which answers with a request id.
//  2. Wait: the status endpoint is polled under a RetryPolicy until the job
//     reports COMPLETED or FAILED, or the attempt budget runs out.
//  3. Result: the full result payload is fetched once the job completes.
//  4. Normalize: the payload is searched for an image URL in several known
//     shapes; the first match is downloaded and inlined as imageBase64.
//
// Service runs the whole pipeline for a Request and is what the HTTP
// endpoint and the editor call. Client exposes the individual vendor calls.
//
// # Errors
//
// Every failure is a sentinel or typed error from errors.go, so callers can
// map it to a status code with errors.Is and errors.As. A failed image
// download during normalization is not an error: the payload is returned
// with an error_detail field instead.
package generation
