// ABOUTME: Disk cache for catalog documents
// ABOUTME: Downloads URLs once and serves later requests from a hashed file
package catalog

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/internal/version"
)

// Cache stores downloaded documents on disk
type Cache struct {
	dir    string
	client *http.Client
}

// NewCache creates a cache in dir. An empty dir uses a temp directory.
func NewCache(dir string, client *http.Client) (*Cache, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "gwambient-catalog")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if client == nil {
		client = &http.Client{}
	}

	return &Cache{
		dir:    dir,
		client: client,
	}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// path returns the cache file for url
func (c *Cache) path(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, fmt.Sprintf("%x%s", hash[:8], getExtension(url)))
}

// Get returns the body at url, from the cache when present
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	cachePath := c.path(url)

	if data, err := os.ReadFile(cachePath); err == nil {
		log.Debugf("Catalog cache hit: %s", cachePath)
		return data, nil
	}

	data, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}

	// write to a temp file first so a failed write never leaves a partial
	// document behind
	tmp, err := os.CreateTemp(c.dir, "download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	log.Debugf("Catalog document saved: %s", cachePath)
	return data, nil
}

// download fetches url without consulting the cache
func (c *Cache) download(ctx context.Context, url string) ([]byte, error) {
	log.Debugf("Downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("User-Agent", version.Product+"/"+version.Version)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download of %s failed: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// getExtension extracts file extension from URL
func getExtension(url string) string {
	// Remove query string
	url = strings.Split(url, "?")[0]

	ext := filepath.Ext(url)
	if ext == "" || len(ext) > 6 {
		ext = ".json"
	}
	return ext
}

// Cleanup removes the cache directory
func (c *Cache) Cleanup() error {
	return os.RemoveAll(c.dir)
}
