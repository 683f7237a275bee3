package artifactory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchWritesBodyAndOverwrites(t *testing.T) {
	var gotKey, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-JFrog-Art-Api")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ABC"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "artifact.zip")
	if err := os.WriteFile(out, []byte("stale content from a previous run"), 0o644); err != nil {
		t.Fatalf("seed output file: %v", err)
	}

	client := NewClient(Credentials{APIKey: "test-key", Endpoint: srv.URL}, Options{})
	if err := client.Fetch(context.Background(), "/repo/a/b.zip", out); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "ABC" {
		t.Fatalf("output content = %q, want ABC", data)
	}
	if gotKey != "test-key" {
		t.Fatalf("X-JFrog-Art-Api header = %q", gotKey)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept header = %q", gotAccept)
	}
}

func TestFetchURLConcatenation(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "b.zip")
	client := NewClient(Credentials{APIKey: "k", Endpoint: srv.URL + "/repo"}, Options{})
	if err := client.Fetch(context.Background(), "/a/b.zip", out); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Endpoint and artifact path are concatenated verbatim, no slash fixing.
	if gotPath != "/repo/a/b.zip" {
		t.Fatalf("request path = %q, want /repo/a/b.zip", gotPath)
	}
}

func TestFetchRemoteRejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		out := filepath.Join(t.TempDir(), "b.zip")
		client := NewClient(Credentials{APIKey: "k", Endpoint: srv.URL}, Options{})
		err := client.Fetch(context.Background(), "/a/b.zip", out)
		srv.Close()

		var rejected *RemoteRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("status %d: expected RemoteRejectedError, got %v", status, err)
		}
		if rejected.StatusCode != status {
			t.Fatalf("StatusCode = %d, want %d", rejected.StatusCode, status)
		}
		if status == http.StatusUnauthorized && !rejected.AuthFailure() {
			t.Fatal("401 should report AuthFailure")
		}
		if status == http.StatusNotFound && !rejected.NotFound() {
			t.Fatal("404 should report NotFound")
		}
		if _, statErr := os.Stat(out); statErr == nil {
			t.Fatalf("status %d: output file should not exist", status)
		}
	}
}

func TestFetchTransportFailure(t *testing.T) {
	// Grab an address that refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	out := filepath.Join(t.TempDir(), "b.zip")
	client := NewClient(Credentials{APIKey: "k", Endpoint: addr}, Options{})
	err := client.Fetch(context.Background(), "/a/b.zip", out)

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

// recordingTransport counts round trips so tests can prove no request left
// the process.
type recordingTransport struct {
	calls int
}

func (rt *recordingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	rt.calls++
	return nil, errors.New("transport should not be invoked")
}

func TestFetchMissingConfiguration(t *testing.T) {
	cases := []Credentials{
		{APIKey: "", Endpoint: "https://host.example"},
		{APIKey: "key", Endpoint: ""},
		{},
	}
	for _, creds := range cases {
		rt := &recordingTransport{}
		client := NewClient(creds, Options{Transport: rt})

		err := client.Fetch(context.Background(), "/a/b.zip", filepath.Join(t.TempDir(), "b.zip"))
		if !errors.Is(err, ErrMissingConfiguration) {
			t.Fatalf("creds %+v: expected ErrMissingConfiguration, got %v", creds, err)
		}
		if rt.calls != 0 {
			t.Fatalf("creds %+v: %d requests issued, want 0", creds, rt.calls)
		}
	}
}

func TestFetchLocalWriteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ABC"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "no-such-dir", "b.zip")
	client := NewClient(Credentials{APIKey: "k", Endpoint: srv.URL}, Options{})
	err := client.Fetch(context.Background(), "/a/b.zip", out)

	var write *LocalWriteError
	if !errors.As(err, &write) {
		t.Fatalf("expected LocalWriteError, got %v", err)
	}
	if write.Path != out {
		t.Fatalf("Path = %q, want %q", write.Path, out)
	}
}
