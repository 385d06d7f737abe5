package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type httpFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a Fetcher with a 30s per-request budget; slow or
// unreachable asset hosts must not stall a whole render.
func NewHTTPFetcher() Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %q: %w", url, err)
	}
	return body, nil
}
