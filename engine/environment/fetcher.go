package environment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes behind a source identifier.
type Fetcher interface {
	// Fetch reads the resource at url.
	//
	// Parameters:
	//   - ctx: context controlling the request
	//   - url: an http(s) URL, a file:// URL or a local path
	//
	// Returns:
	//   - []byte: the resource contents
	//   - error: error if the resource is unreachable
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// defaultFetcher reads local files and downloads http(s) URLs.
type defaultFetcher struct {
	client *http.Client
}

var _ Fetcher = &defaultFetcher{}

// NewFetcher creates the default Fetcher. A nil client uses one with a two minute timeout,
// enough for the 4k studio maps.
//
// Parameters:
//   - client: the HTTP client to use for remote URLs
//
// Returns:
//   - Fetcher: the fetcher
func NewFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &defaultFetcher{client: client}
}

func (f *defaultFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return f.fetchHTTP(ctx, url)
	}
	path := strings.TrimPrefix(url, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (f *defaultFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}
