// ABOUTME: Snapshot sources that fetch a shared board document, plus the pure adopt-or-keep decision.
// ABOUTME: Sources: HTTP URL with cache busting, local file, and a git repository checkout.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/2389-research/corkboard/kanban"
)

// maxSnapshotBytes bounds how much of a remote document is read.
const maxSnapshotBytes = 10 << 20

var (
	// ErrBadStatus is returned when the remote answers with a non-2xx status.
	ErrBadStatus = errors.New("remote returned non-success status")
	// ErrUnsafePath is returned when a snapshot path escapes its repository.
	ErrUnsafePath = errors.New("snapshot path escapes repository")
)

// Source fetches the shared board snapshot.
type Source interface {
	Fetch(ctx context.Context) (*kanban.Snapshot, error)
	String() string
}

// HTTPSource fetches a snapshot document over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

// NewHTTPSource returns a source with a bounded client timeout.
func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		Client: &http.Client{Timeout: 15 * time.Second},
		Now:    time.Now,
	}
}

func (s *HTTPSource) String() string { return s.URL }

// Fetch issues a GET with a t=<unix millis> query so intermediaries never
// serve a stale copy.
func (s *HTTPSource) Fetch(ctx context.Context) (*kanban.Snapshot, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}
	return kanban.ParseSnapshot(body)
}

// FileSource reads a snapshot from a local path.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

func (s *FileSource) Fetch(_ context.Context) (*kanban.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return kanban.ParseSnapshot(data)
}
