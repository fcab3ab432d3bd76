package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/pricewatch-hq/pricewatch/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a fixed response or error.
type stubHTTPClient struct {
	resp httpclient.Response
	err  error
}

func (s stubHTTPClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestFetchReturnsBodyOnSuccess(t *testing.T) {
	fetcher := New(stubHTTPClient{resp: stubHTTPResponse{body: []byte("<html></html>"), statusCode: 200}})

	body, err := fetcher.Fetch(context.Background(), "https://example.com/product/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchWrapsNetworkFailureAsTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	fetcher := New(stubHTTPClient{err: cause})

	_, err := fetcher.Fetch(context.Background(), "https://example.com/product/1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be matchable")
	}
}

func TestFetchReportsNon2xxAsStatusError(t *testing.T) {
	fetcher := New(stubHTTPClient{resp: stubHTTPResponse{body: []byte("blocked"), statusCode: 503}})

	_, err := fetcher.Fetch(context.Background(), "https://example.com/product/1")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.Code != 503 {
		t.Fatalf("Code = %d, want 503", se.Code)
	}
	if se.Snippet != "blocked" {
		t.Fatalf("Snippet = %q", se.Snippet)
	}
}

func TestFetchRejectsNonAbsoluteURLs(t *testing.T) {
	fetcher := New(stubHTTPClient{resp: stubHTTPResponse{statusCode: 200}})

	for _, url := range []string{"", "example.com/p/1", "ftp://example.com/p/1", "/relative/path"} {
		if _, err := fetcher.Fetch(context.Background(), url); err == nil {
			t.Errorf("Fetch(%q) expected error", url)
		}
	}
}
