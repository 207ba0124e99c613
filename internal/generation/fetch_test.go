package generation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFetcher_FetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write([]byte("PNGDATA"))
		case "/big.png":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &ImageFetcher{Client: srv.Client(), AllowPrivate: true, MaxBytes: 32}

	t.Run("success", func(t *testing.T) {
		data, err := f.FetchBytes(context.Background(), srv.URL+"/ok.png")
		require.NoError(t, err)
		assert.Equal(t, "PNGDATA", string(data))
	})

	t.Run("non-2xx", func(t *testing.T) {
		_, err := f.FetchBytes(context.Background(), srv.URL+"/missing.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("too large", func(t *testing.T) {
		_, err := f.FetchBytes(context.Background(), srv.URL+"/big.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}

func TestImageFetcher_RefusesRestrictedURLs(t *testing.T) {
	f := &ImageFetcher{}

	tests := []string{
		"http://127.0.0.1/out.png",
		"http://10.0.0.8/out.png",
		"http://192.168.1.20/out.png",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/out.png",
		"http://0.0.0.0/out.png",
		"ftp://93.184.216.34/out.png",
		"file:///etc/passwd",
		"not a url",
	}

	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			_, err := f.FetchBytes(context.Background(), u)
			assert.Error(t, err)
		})
	}
}

func TestCheckPublicURL_AllowsPublicIP(t *testing.T) {
	assert.NoError(t, checkPublicURL("https://93.184.216.34/out.png"))
}

// redirectingTransport answers every request to a public address with a
// redirect to loopback, and records the hosts it was asked for.
type redirectingTransport struct {
	mu    sync.Mutex
	hosts []string
}

func (rt *redirectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.hosts = append(rt.hosts, req.URL.Host)
	rt.mu.Unlock()

	resp := &http.Response{Request: req, Header: make(http.Header), Body: io.NopCloser(strings.NewReader(""))}
	if req.URL.Hostname() == "93.184.216.34" {
		resp.StatusCode = http.StatusFound
		resp.Header.Set("Location", "http://127.0.0.1:9/secret")
		return resp, nil
	}
	resp.StatusCode = http.StatusOK
	resp.Body = io.NopCloser(strings.NewReader("SECRET"))
	return resp, nil
}

func TestImageFetcher_RefusesRedirectToRestrictedAddress(t *testing.T) {
	rt := &redirectingTransport{}
	f := &ImageFetcher{Client: &http.Client{Transport: rt}}

	data, err := f.FetchBytes(context.Background(), "http://93.184.216.34/out.png")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errRestricted), "got %v", err)
	assert.Empty(t, data)
	assert.Equal(t, []string{"93.184.216.34"}, rt.hosts, "the redirect target is never contacted")
}

func TestImageFetcher_FollowsRedirectWhenPrivateAllowed(t *testing.T) {
	rt := &redirectingTransport{}
	f := &ImageFetcher{Client: &http.Client{Transport: rt}, AllowPrivate: true}

	data, err := f.FetchBytes(context.Background(), "http://93.184.216.34/out.png")

	require.NoError(t, err)
	assert.Equal(t, "SECRET", string(data))
}

func TestRestrictedDialControl(t *testing.T) {
	tests := []struct {
		address string
		wantErr bool
	}{
		{"93.184.216.34:443", false},
		{"[2606:2800:220:1:248:1893:25c8:1946]:80", false},
		{"127.0.0.1:80", true},
		{"10.1.2.3:8080", true},
		{"[::1]:443", true},
		{"169.254.169.254:80", true},
		{"no-port", true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := restrictedDialControl("tcp", tt.address, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageFetcher_DialerRefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("SECRET"))
	}))
	defer srv.Close()

	f := &ImageFetcher{}
	_, err := f.client().Get(srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "restricted address")
}
