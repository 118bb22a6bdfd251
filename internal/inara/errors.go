package inara

import "fmt"

// FetchError is a failed retrieval: a transport error or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // start of the response body for status errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DiscoveryError means the commodity index could not be read or listed no
// commodities. A run cannot continue without ids.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover commodities at %s: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
