package artifactory

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingConfiguration is returned when the resolved API key or host is
// empty. The fetcher refuses to issue a request without both, so an empty
// credential never crosses the network.
var ErrMissingConfiguration = errors.New("artifactory: api key or host not configured")

// TransportError wraps a network-level failure: DNS, TLS handshake,
// connection refused, timeout.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("artifactory: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejectedError is a non-success HTTP status from the repository.
type RemoteRejectedError struct {
	StatusCode int
	URL        string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("artifactory: %s returned HTTP %d", e.URL, e.StatusCode)
}

// AuthFailure reports whether the repository rejected the API key.
func (e *RemoteRejectedError) AuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// NotFound reports whether the artifact path does not exist in the repository.
func (e *RemoteRejectedError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// LocalWriteError wraps a failure to create or write the output file.
type LocalWriteError struct {
	Path string
	Err  error
}

func (e *LocalWriteError) Error() string {
	return fmt.Sprintf("artifactory: write %s: %v", e.Path, e.Err)
}

func (e *LocalWriteError) Unwrap() error { return e.Err }
