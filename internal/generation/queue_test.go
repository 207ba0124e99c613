package generation

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeTimer fires immediately and records every requested wait.
type fakeTimer struct {
	c      chan time.Time
	starts []time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.starts = append(t.starts, d)
	t.c <- time.Time{}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

// fakeQueue emulates the vendor queue endpoints.
type fakeQueue struct {
	mu sync.Mutex

	submitStatus int
	submitBody   string

	// statuses are served in order; the last one repeats.
	statuses []string
	// statusFailures maps a 1-based status call to an HTTP error code.
	statusFailures map[int]int

	resultStatus int
	result       string

	// files are served under /files/.
	files map[string]string

	submits     int
	statusCalls int
	resultCalls int
	lastSubmit  []byte
	authHeaders []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		submitStatus: http.StatusOK,
		submitBody:   `{"request_id":"req-123","status":"IN_QUEUE"}`,
		statuses:     []string{StatusCompleted},
		resultStatus: http.StatusOK,
		result:       `{"images":[{"url":"https://cdn.example/out.png"}],"seed":42}`,
		files:        map[string]string{},
	}
}

func (q *fakeQueue) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	path := r.URL.Path
	if !strings.HasPrefix(path, "/files/") {
		q.authHeaders = append(q.authHeaders, r.Header.Get("Authorization"))
	}

	switch {
	case r.Method == http.MethodPost && path == submitPath:
		q.submits++
		q.lastSubmit, _ = io.ReadAll(r.Body)
		w.WriteHeader(q.submitStatus)
		_, _ = io.WriteString(w, q.submitBody)

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/status"):
		q.statusCalls++
		if code, ok := q.statusFailures[q.statusCalls]; ok {
			http.Error(w, "unavailable", code)
			return
		}
		i := min(q.statusCalls-1, len(q.statuses)-1)
		_, _ = io.WriteString(w, `{"status":"`+q.statuses[i]+`","request_id":"req-123"}`)

	case r.Method == http.MethodGet && strings.HasPrefix(path, requestsPath):
		q.resultCalls++
		w.WriteHeader(q.resultStatus)
		_, _ = io.WriteString(w, q.result)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/files/"):
		body, ok := q.files[strings.TrimPrefix(path, "/files/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)

	default:
		http.NotFound(w, r)
	}
}

// update mutates the fake under its lock.
func (q *fakeQueue) update(fn func(q *fakeQueue)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn(q)
}

// submitted returns the last submission body and every Authorization header seen.
func (q *fakeQueue) submitted() ([]byte, []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastSubmit, append([]string(nil), q.authHeaders...)
}

func (q *fakeQueue) counts() (submits, statusCalls, resultCalls int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submits, q.statusCalls, q.resultCalls
}

// startQueue serves q and returns a client wired to it.
func startQueue(t *testing.T, q *fakeQueue, key string) (*Client, *fakeTimer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(q)
	t.Cleanup(srv.Close)

	timer := newFakeTimer()
	c := NewClient(Options{
		BaseURL:    srv.URL,
		Key:        key,
		HTTPClient: srv.Client(),
		Policy:     DefaultRetryPolicy(),
		Timer:      timer,
		Logger:     discardLogger(),
	})
	return c, timer, srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
