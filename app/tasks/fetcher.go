package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxBodySize = 10 << 20

// Fetcher downloads upstream documents with the configured User-Agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch GETs url within timeout. When contentType is set, the response must
// carry it.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration, contentType string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if contentType != "" {
		got := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(got), contentType) {
			return nil, fmt.Errorf("unexpected content type: %s", got)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
