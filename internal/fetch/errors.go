package fetch

import "fmt"

// TransportError reports that the page could not be reached at all
// (DNS, connect, timeout). The store is never touched after one of these.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response from the site.
type StatusError struct {
	URL     string
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Code)
	}
	return fmt.Sprintf("fetch %s: status %d body: %s", e.URL, e.Code, e.Snippet)
}
