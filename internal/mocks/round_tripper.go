package mocks

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rwx-research/lms-cli/internal/errors"
)

// RoundTripper records every request it sees. It is safe for concurrent use.
type RoundTripper struct {
	MockRoundTrip func(*http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []*http.Request
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.mu.Unlock()

	if rt.MockRoundTrip != nil {
		return rt.MockRoundTrip(req)
	}

	return nil, errors.New("MockRoundTrip was not configured")
}

func (rt *RoundTripper) Requests() []*http.Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return append([]*http.Request(nil), rt.requests...)
}

// CountPath counts requests to the given URL path, ignoring the query string.
func (rt *RoundTripper) CountPath(path string) int {
	count := 0
	for _, req := range rt.Requests() {
		if req.URL.Path == path {
			count++
		}
	}
	return count
}

func JSONResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")

	return &http.Response{
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
