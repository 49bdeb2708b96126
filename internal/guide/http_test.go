package guide

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
)

const oneStrokeJSON = `{"strokes":["M 100 400 L 900 400 L 900 450 L 100 450 Z"],"medians":[[[100,425],[900,425]]]}`

func newStrokeServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		name, err := url.PathUnescape(strings.TrimPrefix(r.URL.EscapedPath(), "/"))
		if err != nil || name != "一.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(oneStrokeJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProviderDownloadsAndCaches(t *testing.T) {
	var hits int32
	srv := newStrokeServer(t, &hits)
	p := NewHTTPProvider(srv.URL, t.TempDir())

	path, err := p.Load(context.Background(), "一")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path.Len() != 1 {
		t.Fatalf("expected 1 stroke, got %d", path.Len())
	}
	if !p.Cached("一") {
		t.Fatalf("expected stroke data on disk")
	}

	p.Offline = true
	if _, err := p.Load(context.Background(), "一"); err != nil {
		t.Fatalf("expected offline load from cache, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single download, got %d", hits)
	}
}

func TestHTTPProviderNotFound(t *testing.T) {
	var hits int32
	srv := newStrokeServer(t, &hits)
	p := NewHTTPProvider(srv.URL, t.TempDir())

	_, err := p.Load(context.Background(), "二")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if p.Cached("二") {
		t.Fatalf("failed download must not be cached")
	}
}

func TestHTTPProviderRejectsOversizePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"strokes":["` + strings.Repeat("L 1 1 ", maxPayloadBytes/6+1) + `"]}`))
	}))
	t.Cleanup(srv.Close)
	p := NewHTTPProvider(srv.URL, t.TempDir())

	_, err := p.Load(context.Background(), "一")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if p.Cached("一") {
		t.Fatalf("oversize payload must not be cached")
	}
}

func TestHTTPProviderOfflineMiss(t *testing.T) {
	p := NewHTTPProvider("http://127.0.0.1:1", t.TempDir())
	p.Offline = true
	if _, err := p.Load(context.Background(), "一"); !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestDecodePathRejectsEmpty(t *testing.T) {
	if _, err := decodePath("一", []byte(`{"strokes":[]}`)); err == nil {
		t.Fatalf("expected error for empty strokes")
	}
	if _, err := decodePath("一", []byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
