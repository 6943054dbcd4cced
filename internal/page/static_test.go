package page

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newResultsServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><section><a id="domainName">hit%d.com</a></section></body></html>`, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// --- Static Source Tests ---

func TestStatic_CaptureRefetchesEachTime(t *testing.T) {
	srv, hits := newResultsServer(t)
	s := NewStatic(StaticConfig{URL: srv.URL})
	ctx := context.Background()

	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	first, err := s.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	second, err := s.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	if !strings.Contains(first, "hit2.com") || !strings.Contains(second, "hit3.com") {
		t.Errorf("expected fresh content per capture, got %q / %q", first, second)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", hits.Load())
	}
}

func TestStatic_CaptureBeforeOpen(t *testing.T) {
	s := NewStatic(StaticConfig{URL: "http://127.0.0.1:1"})
	if _, err := s.Capture(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestStatic_OpenFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStatic(StaticConfig{URL: srv.URL})
	if err := s.Open(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestStatic_Defaults(t *testing.T) {
	s := NewStatic(StaticConfig{URL: "http://example.com"})
	if s.config.UserAgent == "" || s.config.Timeout == 0 {
		t.Errorf("defaults not applied: %+v", s.config)
	}
	if s.Type() != "static" {
		t.Errorf("Type() = %q", s.Type())
	}
	if err := s.Reset(context.Background()); err != nil {
		t.Errorf("Reset() error = %v", err)
	}
}
