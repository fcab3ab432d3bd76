package httpclient

import "context"

// Client is the transport seam for page fetching and webhook delivery.
// Implementations issue one GET per call; callers own retries and pacing.
// Tests substitute stubs so no package above this one touches the network.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Response exposes the two things callers act on: the raw body handed to
// the extractor and the status code that decides the fetch error taxonomy.
type Response interface {
	Body() []byte
	StatusCode() int
}
