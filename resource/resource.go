package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-faster/errors"
)

// ============================================================================
// RESOURCE: One-shot fetch of a static document
// ============================================================================
// The dashboard reads two static documents: the credentials file and the
// employee dataset. Both may live on disk or behind an http(s) URL.
// A fetch is request/response: no retry, no caching. The caller decides what a
// failure means for its own state.
// ============================================================================

// Fetcher returns the full body of a static document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// LoadError reports a failed fetch or a body that could not be parsed.
type LoadError struct {
	Location   string
	StatusCode int // non-zero when the server answered with a non-2xx status
	Err        error
}

func (e *LoadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("load %s: HTTP status %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("load %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err (or anything it wraps) is a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// New picks a fetcher for location: http(s) URLs go over the network,
// everything else is treated as a file path.
func New(location string) Fetcher {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTP(location, nil)
	}
	return NewFile(location)
}

// ── File ─────────────────────────────────────────────────────────────────────

// File reads a document from the local filesystem.
type File struct {
	path string
}

// NewFile creates a file fetcher.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Location() string { return f.path }

// Path returns the filesystem path, used by watchers.
func (f *File) Path() string { return f.path }

func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Location: f.path, Err: err}
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &LoadError{Location: f.path, Err: errors.Wrap(err, "read file")}
	}
	return data, nil
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

// HTTP fetches a document with a single GET request.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP fetcher. A nil client means http.DefaultClient.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

func (h *HTTP) Location() string { return h.url }

func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, &LoadError{Location: h.url, Err: errors.Wrap(err, "build request")}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &LoadError{Location: h.url, Err: errors.Wrap(err, "request")}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{
			Location:   h.url,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Location: h.url, Err: errors.Wrap(err, "read body")}
	}
	return body, nil
}
