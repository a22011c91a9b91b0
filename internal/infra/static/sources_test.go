package static

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSet = `[{"question":"2+2?","options":["3","4"],"answer":"4"}]`

func TestFileSourceReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(sampleSet), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != sampleSet {
		t.Fatalf("unexpected payload %s", data)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestHTTPSourceFetches(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSet))
	}))
	defer server.Close()

	data, err := NewHTTPSource(server.URL+"/questions.json", server.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != sampleSet {
		t.Fatalf("unexpected payload %s", data)
	}
	if accept != "application/json" {
		t.Fatalf("expected json accept header, got %q", accept)
	}
}

func TestHTTPSourcePropagatesNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := NewHTTPSource(server.URL, nil).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestHTTPSourceRejectsOversizedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte(" "), maxPayload+1))
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, nil).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}
