// Package cache stores per-file function analysis results on disk, keyed by
// file path and validated against a BLAKE3 hash of the file content.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/lexscope/pkg/models"
)

// formatVersion is mixed into every key so results from an older detector
// set are never served.
const formatVersion = "functions/v1"

// Cache provides file-based caching for analysis results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is one cached file result as stored on disk.
type Entry struct {
	Hash        string              `json:"hash"`
	Timestamp   time.Time           `json:"timestamp"`
	File        *models.File        `json:"file"`
	Diagnostics []models.Diagnostic `json:"diagnostics,omitempty"`
}

// New creates a new cache instance. A disabled cache misses every lookup
// and ignores every store.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool { return c.enabled }

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Lookup returns the cached result for path if content is unchanged and the
// entry has not expired.
func (c *Cache) Lookup(path string, content []byte) (*models.File, []models.Diagnostic, bool) {
	if !c.enabled {
		return nil, nil, false
	}

	entryPath := c.keyPath(path)
	data, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.File == nil {
		return nil, nil, false
	}

	if entry.Hash != HashBytes(content) {
		return nil, nil, false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(entryPath)
		return nil, nil, false
	}

	return entry.File, entry.Diagnostics, true
}

// Store saves the result for path along with the hash of content.
func (c *Cache) Store(path string, content []byte, file *models.File, diags []models.Diagnostic) error {
	if !c.enabled || file == nil {
		return nil
	}

	entry := Entry{
		Hash:        HashBytes(content),
		Timestamp:   time.Now(),
		File:        file,
		Diagnostics: diags,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(path), data, 0600)
}

// Invalidate removes the entry for path.
func (c *Cache) Invalidate(path string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a file path to its entry path.
func (c *Cache) keyPath(path string) string {
	hash := blake3.Sum256([]byte(formatVersion + "\x00" + path))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
