// Package webclient builds the single HTTP client shared by every network
// call in a run. The connection cap is the only backpressure mechanism:
// concurrent page, detail and mutation fetches queue for a free connection
// instead of erroring.
package webclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

// MaxConns bounds simultaneously open connections per host. Crawling both
// catalogs at once can therefore hold up to twice this many connections in
// total; the cap is per service, not per run.
const MaxConns = 10

// New creates the shared HTTP client. The cookie jar carries the sink
// catalog's session after login; mutation calls rely on it implicitly.
func New() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New never fails with nil options; keep the client usable anyway.
		jar = nil
	}

	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxConnsPerHost:     MaxConns,
			MaxIdleConns:        MaxConns,
			MaxIdleConnsPerHost: MaxConns,
		},
	}
}
