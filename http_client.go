package main

import (
	"net/http"
	"time"
)

const defaultRequestTimeout = 120 * time.Second

// newModelHTTPClient returns the HTTP client used for local inference calls.
// Local models can take minutes on a single item, so the timeout is generous
// and configurable.
func newModelHTTPClient(cfg Config) *http.Client {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}
