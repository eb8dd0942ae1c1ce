package versions

import (
	"net/http"
)

const latestVersionHeader = "X-Lms-Cli-Latest-Version"

type recorder struct {
	next http.RoundTripper
}

func (r recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Proxy routes on the app origin don't advertise a version.
	if latest := resp.Header.Get(latestVersionHeader); latest != "" {
		_ = SetCliLatestVersion(latest)
	}

	return resp, nil
}

// NewRoundTripper records the latest CLI version advertised by the backend on every response.
func NewRoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return recorder{next: next}
}
