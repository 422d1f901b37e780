package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appLog "datepicker/internal/log"
)

// maxBody limits how much of a feed is read.
const maxBody = 8 << 20

// Source is one blackout calendar: a local file path, a file:// URL or an
// http(s) URL.
type Source struct {
	ID  string
	URL string
}

// Fetcher reads ICS payloads.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a fetcher whose HTTP requests time out after timeout
// (15s when zero).
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the payload of src.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("ics source has no URL")
	}
	if path, ok := strings.CutPrefix(src.URL, "file://"); ok || !strings.Contains(src.URL, "://") {
		if !ok {
			path = src.URL
		}
		return os.ReadFile(path)
	}

	appLog.Info("ics fetch start", "id", src.ID, "url", redactURL(src.URL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		appLog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ics fetch: unexpected status %s", resp.Status)
		appLog.Error("ics fetch non-OK", err, "id", src.ID, "url", redactURL(src.URL), "status", resp.StatusCode)
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	appLog.Info("ics fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
	return body, nil
}

// redactURL hides the path and query of a feed URL for logging:
//
//	https://example.com/private.ics?token=abcd -> https://example.com/...(redacted)
//
// Local paths are returned unchanged.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"
	scheme, rest, ok := strings.Cut(u, "://")
	if !ok || scheme == "file" {
		return u
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, "?")
	return scheme + "://" + host + redactedSuffix
}
