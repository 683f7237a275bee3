// Package artifactory downloads build artifacts from an Artifactory
// repository. Credentials come from Resolve, which layers environment
// overrides on top of either the managed parameter store or explicit
// arguments.
package artifactory

import (
	"context"
	"crypto/tls"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultTimeout = 60 * time.Second

// Options tunes the fetch client. Zero values give a 60s timeout and a
// single attempt; retries are opt-in because provisioning has always done
// one attempt and callers decide how to react to failure.
type Options struct {
	Timeout time.Duration
	Retries int

	// Transport overrides the underlying round tripper. Used by tests.
	Transport http.RoundTripper
}

// Client performs authenticated artifact downloads. Safe for concurrent use
// as long as each Fetch writes to a distinct output path.
type Client struct {
	httpClient *retryablehttp.Client
	creds      Credentials
}

// NewClient builds a fetch client from resolved credentials.
func NewClient(creds Credentials, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConns:        5,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: timeout, Transport: transport}
	rc.RetryMax = opts.Retries
	rc.Logger = nil
	// Hand back the final response instead of a "giving up" error, so a
	// server-side status maps to RemoteRejectedError rather than a
	// transport failure.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{httpClient: rc, creds: creds}
}

// Fetch downloads endpoint+artifactPath and streams it to outputPath,
// overwriting any existing file. The URL is a plain concatenation: the
// artifact path must begin with "/" and the endpoint must not end with one.
func (c *Client) Fetch(ctx context.Context, artifactPath, outputPath string) error {
	if c.creds.APIKey == "" || c.creds.Endpoint == "" {
		return ErrMissingConfiguration
	}

	url := c.creds.Endpoint + artifactPath

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	req.Header.Set("X-JFrog-Art-Api", c.creds.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &RemoteRejectedError{StatusCode: resp.StatusCode, URL: url}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return &LocalWriteError{Path: outputPath, Err: err}
	}

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(outputPath)
		return &LocalWriteError{Path: outputPath, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return &LocalWriteError{Path: outputPath, Err: err}
	}

	log.Printf("[artifactory] Downloaded %s (%d bytes) to %s", artifactPath, n, outputPath)
	return nil
}
