package assembler

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxPageBytes bounds a single page image download.
const DefaultMaxPageBytes = 32 << 20

// Fetcher loads the raw bytes behind a page reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ref string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}

// HTTPFetcher downloads page images over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		maxBytes:  DefaultMaxPageBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("page image exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

// Invalidator is implemented by fetchers that keep copies of what they
// fetched. The assembler invalidates every page it could not place.
type Invalidator interface {
	Invalidate(ref string) error
}

// CachingFetcher keeps fetched page images on disk so a retried export does
// not hit the source site again.
type CachingFetcher struct {
	next     Fetcher
	cacheDir string
}

// NewCachingFetcher creates the cache directory if needed.
func NewCachingFetcher(next Fetcher, cacheDir string) (*CachingFetcher, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CachingFetcher{next: next, cacheDir: cacheDir}, nil
}

func (c *CachingFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	cachePath := filepath.Join(c.cacheDir, c.pageFilename(ref))

	// Check if cached file exists
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	data, err := c.next.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Caching is best effort; the page is still usable.
	_ = c.store(cachePath, data)
	return data, nil
}

// Invalidate removes the cached copy of ref.
func (c *CachingFetcher) Invalidate(ref string) error {
	err := os.Remove(filepath.Join(c.cacheDir, c.pageFilename(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// pageFilename generates a stable filename from the reference hash.
func (c *CachingFetcher) pageFilename(ref string) string {
	hash := sha256.Sum256([]byte(ref))
	return fmt.Sprintf("page_%x.img", hash[:12])
}

func (c *CachingFetcher) store(cachePath string, data []byte) error {
	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "page_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	tmpFile.Close()

	// Atomic rename
	return os.Rename(tmpPath, cachePath)
}
