package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pricewatch-hq/pricewatch/pkg/httpclient"
)

// Fetcher retrieves raw product-page bytes. It performs exactly one GET per
// call with a browser identity; retry policy belongs to whoever schedules
// the calls, not here.
type Fetcher struct {
	client httpclient.Client
}

// DefaultTimeout bounds a page fetch when the caller does not configure one.
const DefaultTimeout = 15 * time.Second

// New constructs a fetcher with the provided HTTP client (or a default
// browser-identity client).
func New(client httpclient.Client) *Fetcher {
	if client == nil {
		client = httpclient.NewBrowserClient(DefaultTimeout)
	}
	return &Fetcher{client: client}
}

// Fetch GETs the page and returns its raw bytes. Network failures surface as
// *TransportError, non-2xx responses as *StatusError; the two are distinct
// so callers never have to guess whether the page was reached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		return nil, &StatusError{URL: rawURL, Code: code, Snippet: bodySnippet(resp.Body())}
	}

	return resp.Body(), nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("url %q is not an absolute http(s) url", rawURL)
	}
	return nil
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
