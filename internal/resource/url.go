package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Opener opens the resource a parsed URL points at.
type Opener func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

// ErrUnknownScheme is returned by OpenURL for a scheme with no Opener.
var ErrUnknownScheme = errors.New("unknown url scheme")

// HTTPClient is used by the http and https openers.
var HTTPClient = http.DefaultClient

var (
	openers   = make(map[string]Opener)
	openersMu sync.RWMutex
)

func init() {
	Register("file", openFile)
	Register("http", openHTTP)
	Register("https", openHTTP)
}

// Register installs op for scheme, replacing any previous Opener.
func Register(scheme string, op Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[strings.ToLower(scheme)] = op
}

// RegisterLoader routes scheme through l, so that "scheme:name" opens name.
func RegisterLoader(scheme string, l Loader) {
	Register(scheme, func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		name := u.Opaque
		if name == "" {
			name = strings.TrimPrefix(u.Host+u.Path, "/")
		}
		return l.Open(name)
	})
}

// Schemes lists the registered schemes, sorted.
func Schemes() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()

	out := make([]string, 0, len(openers))
	for s := range openers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// OpenURL opens raw according to its scheme. A raw string without a scheme
// is treated as a local file path.
func OpenURL(ctx context.Context, raw string) (io.ReadCloser, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	// A single-letter scheme is a Windows drive, not a URL.
	if u.Scheme == "" || len(u.Scheme) == 1 {
		return openPath(raw)
	}

	openersMu.RLock()
	op, ok := openers[strings.ToLower(u.Scheme)]
	openersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, u.Scheme)
	}
	return op(ctx, u)
}

func openFile(_ context.Context, u *url.URL) (io.ReadCloser, error) {
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	return openPath(filepath.FromSlash(p))
}

func openPath(p string) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return f, err
}

func openHTTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u.Redacted())
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", u.Redacted(), resp.Status)
	}
	return resp.Body, nil
}
