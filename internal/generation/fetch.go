package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"syscall"
	"time"
)

// DefaultMaxImageBytes caps a downloaded result image.
const DefaultMaxImageBytes = 20 << 20

// maxRedirects matches net/http's default redirect limit.
const maxRedirects = 10

// ImageFetcher downloads result images over HTTP.
//
// Unless AllowPrivate is set, only http and https URLs that resolve to public
// addresses are fetched. Every redirect hop is checked again, and when Client
// is nil (or uses a plain *http.Transport) the dialer also refuses restricted
// addresses, so a host that re-resolves after the check is still blocked.
type ImageFetcher struct {
	Client       *http.Client
	AllowPrivate bool
	MaxBytes     int64

	once    sync.Once
	guarded *http.Client
}

// client returns the HTTP client used for downloads.
func (f *ImageFetcher) client() *http.Client {
	if f.AllowPrivate {
		if f.Client == nil {
			return http.DefaultClient
		}
		return f.Client
	}
	f.once.Do(func() {
		c := &http.Client{}
		if f.Client != nil {
			*c = *f.Client
		}

		switch t := c.Transport.(type) {
		case nil:
			c.Transport = guardedTransport(http.DefaultTransport.(*http.Transport))
		case *http.Transport:
			c.Transport = guardedTransport(t)
		}

		next := c.CheckRedirect
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if err := checkPublicURL(req.URL.String()); err != nil {
				return fmt.Errorf("redirect refused: %w", err)
			}
			if next != nil {
				return next(req, via)
			}
			return nil
		}
		f.guarded = c
	})
	return f.guarded
}

// guardedTransport clones t with a dialer that refuses restricted addresses.
func guardedTransport(t *http.Transport) *http.Transport {
	gt := t.Clone()
	// A proxy would dial on our behalf and bypass the check.
	gt.Proxy = nil
	d := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   restrictedDialControl,
	}
	gt.DialContext = d.DialContext
	return gt
}

// restrictedDialControl runs after name resolution, on the exact address
// being dialed.
func restrictedDialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("dial to non-IP address %q", address)
	}
	return checkIP(ip)
}

// FetchBytes downloads url and returns the body.
func (f *ImageFetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if !f.AllowPrivate {
		if err := checkPublicURL(rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: %d", resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}

// checkPublicURL rejects URLs with other schemes and hosts that resolve to
// private, loopback or link-local addresses. Every resolved address is checked.
func checkPublicURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("disallowed URL scheme: %q", u.Scheme)
	}

	host := u.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		ips, err = net.LookupIP(host)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", host, err)
		}
	}
	if len(ips) == 0 {
		return fmt.Errorf("no addresses found for %s", host)
	}

	for _, ip := range ips {
		if err := checkIP(ip); err != nil {
			return err
		}
	}
	return nil
}

var errRestricted = errors.New("refusing to fetch from restricted address")

func checkIP(ip net.IP) error {
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w %s", errRestricted, ip)
	}
	return nil
}
