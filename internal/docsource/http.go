package docsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lunalabs/intakeflow/internal/domain"
)

const defaultFetchTimeout = 60 * time.Second

// HTTPSource fetches document bytes over HTTP. The URL template contains a
// single "{id}" slot that is replaced by the file handle, e.g.
// "https://drive.example.com/uc?export=download&id={id}".
type HTTPSource struct {
	urlTemplate string
	client      *http.Client
}

// NewHTTPSource creates an HTTPSource for the given URL template.
func NewHTTPSource(urlTemplate string, timeout time.Duration) *HTTPSource {
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
	}
}

// FetchBytes downloads the document for id.
func (s *HTTPSource) FetchBytes(ctx context.Context, id string) ([]byte, error) {
	url := strings.ReplaceAll(s.urlTemplate, "{id}", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %v: %w", id, err, domain.ErrFetchFailed)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %v: %w", id, err, domain.ErrFetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: HTTP %d: %w", id, resp.StatusCode, domain.ErrFetchFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body for %q: %v: %w", id, err, domain.ErrFetchFailed)
	}
	return data, nil
}
