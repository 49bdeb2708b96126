package guide

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL serves hanzi-writer-data stroke files.
const DefaultBaseURL = "https://cdn.jsdelivr.net/npm/hanzi-writer-data@2.0"

const maxPayloadBytes = 1 << 20

// ErrTooLarge is returned for stroke data over maxPayloadBytes.
var ErrTooLarge = errors.New("stroke data exceeds 1 MiB")

// HTTPProvider downloads stroke data and keeps a copy on disk.
type HTTPProvider struct {
	BaseURL  string
	CacheDir string
	// Offline serves only from the disk cache.
	Offline bool
	Client  *http.Client
	Logger  *slog.Logger
}

// NewHTTPProvider returns a provider for baseURL caching into cacheDir.
func NewHTTPProvider(baseURL, cacheDir string) *HTTPProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPProvider{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Load implements Provider.
func (p *HTTPProvider) Load(ctx context.Context, character string) (*Path, error) {
	if character == "" {
		return nil, fmt.Errorf("%w: empty character", ErrLoad)
	}
	if data, ok := p.readCache(character); ok {
		path, err := decodePath(character, data)
		if err == nil {
			return path, nil
		}
		p.logger().Warn("discarding unreadable cached stroke data", "char", character, "err", err)
	}
	if p.Offline {
		return nil, fmt.Errorf("%w: %q not cached and offline", ErrLoad, character)
	}

	data, err := p.download(ctx, character)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	path, err := decodePath(character, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := p.writeCache(character, data); err != nil {
		p.logger().Warn("failed to cache stroke data", "char", character, "err", err)
	}
	return path, nil
}

// Cached reports whether stroke data for character is on disk.
func (p *HTTPProvider) Cached(character string) bool {
	if p.CacheDir == "" {
		return false
	}
	_, err := os.Stat(p.cachePath(character))
	return err == nil
}

func (p *HTTPProvider) download(ctx context.Context, character string) ([]byte, error) {
	endpoint := p.BaseURL + "/" + url.PathEscape(character) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status for %q: %s", character, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read stroke data: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: %q", ErrTooLarge, character)
	}
	return data, nil
}

func (p *HTTPProvider) cachePath(character string) string {
	return filepath.Join(p.CacheDir, url.PathEscape(character)+".json")
}

func (p *HTTPProvider) readCache(character string) ([]byte, bool) {
	if p.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(p.cachePath(character))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger().Warn("failed to read stroke cache", "char", character, "err", err)
		}
		return nil, false
	}
	return data, true
}

func (p *HTTPProvider) writeCache(character string, data []byte) error {
	if p.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.CacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(p.CacheDir, "strokes-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write stroke data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p.cachePath(character)); err != nil {
		return fmt.Errorf("failed to move stroke data into cache: %w", err)
	}
	return nil
}

func (p *HTTPProvider) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func decodePath(character string, data []byte) (*Path, error) {
	var payload charData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stroke data: %w", err)
	}
	if len(payload.Strokes) == 0 {
		return nil, fmt.Errorf("no strokes for %q", character)
	}
	strokes, err := ParseStrokes(payload.Strokes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse strokes for %q: %w", character, err)
	}
	return &Path{Character: character, Strokes: strokes}, nil
}
