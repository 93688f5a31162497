package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panbanda/lexscope/pkg/models"
)

const dogSource = "class Dog { void Bark() { } }"

func sampleFile(path string) *models.File {
	return &models.File{
		Path: path,
		Namespaces: []*models.Namespace{{
			Name: models.GlobalNamespace,
			Classes: []*models.Class{{
				Name:      "Dog",
				Functions: []*models.Function{{Name: "Bark", Complexity: 1, Lines: 1}},
			}},
		}},
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := New(filepath.Join(tmpDir, "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}

	c, err = New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")

	if _, err := New(cacheDir, 24, true); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestStoreAndLookup(t *testing.T) {
	c := newTestCache(t)
	content := []byte(dogSource)
	diags := []models.Diagnostic{{File: "Dog.cs", Line: 3, Tokens: "for ( ;", Count: 2}}

	if err := c.Store("Dog.cs", content, sampleFile("Dog.cs"), diags); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	f, gotDiags, ok := c.Lookup("Dog.cs", content)
	if !ok {
		t.Fatal("Lookup() returned false for stored entry")
	}
	fn := f.Namespaces[0].Classes[0].Functions[0]
	if fn.Name != "Bark" || fn.Complexity != 1 {
		t.Errorf("Lookup() function = %+v", fn)
	}
	if len(gotDiags) != 1 || gotDiags[0].Count != 2 {
		t.Errorf("Lookup() diagnostics = %+v", gotDiags)
	}
}

func TestLookupChangedContent(t *testing.T) {
	c := newTestCache(t)
	if err := c.Store("Dog.cs", []byte(dogSource), sampleFile("Dog.cs"), nil); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	if _, _, ok := c.Lookup("Dog.cs", []byte(dogSource+"\n")); ok {
		t.Error("Lookup() should miss when content changed")
	}
}

func TestLookupNonExistent(t *testing.T) {
	c := newTestCache(t)
	if _, _, ok := c.Lookup("Missing.cs", []byte(dogSource)); ok {
		t.Error("Lookup() should return false for unknown path")
	}
}

func TestLookupCorruptEntry(t *testing.T) {
	c := newTestCache(t)
	if err := os.WriteFile(c.keyPath("Dog.cs"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := c.Lookup("Dog.cs", []byte(dogSource)); ok {
		t.Error("Lookup() should miss on a corrupt entry")
	}
}

func TestInvalidate(t *testing.T) {
	c := newTestCache(t)
	content := []byte(dogSource)
	if err := c.Store("Dog.cs", content, sampleFile("Dog.cs"), nil); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	if err := c.Invalidate("Dog.cs"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, _, ok := c.Lookup("Dog.cs", content); ok {
		t.Error("entry should not exist after invalidation")
	}
	if err := c.Invalidate("Dog.cs"); err != nil {
		t.Errorf("Invalidate() of a missing entry should not error: %v", err)
	}
}

func TestClear(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	c, err := New(cacheDir, 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for _, name := range []string{"A.cs", "B.cs", "C.cs"} {
		if err := c.Store(name, []byte(dogSource), sampleFile(name), nil); err != nil {
			t.Fatalf("Store() error: %v", err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Error("Clear() should remove cache directory")
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := c.Store("Dog.cs", []byte(dogSource), sampleFile("Dog.cs"), nil); err != nil {
		t.Errorf("Store() on disabled cache should not error: %v", err)
	}
	if _, _, ok := c.Lookup("Dog.cs", []byte(dogSource)); ok {
		t.Error("Lookup() on disabled cache should return false")
	}
	if err := c.Invalidate("Dog.cs"); err != nil {
		t.Errorf("Invalidate() on disabled cache should not error: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on disabled cache should not error: %v", err)
	}
}

func TestHashBytes(t *testing.T) {
	hash1 := HashBytes([]byte("hello world"))
	hash2 := HashBytes([]byte("hello world"))
	hash3 := HashBytes([]byte("different"))

	if hash1 == "" {
		t.Error("HashBytes() returned empty hash")
	}
	if hash1 != hash2 {
		t.Error("HashBytes() should return consistent hashes for same content")
	}
	if hash1 == hash3 {
		t.Error("HashBytes() should return different hashes for different content")
	}
}

func TestGetStats(t *testing.T) {
	c := newTestCache(t)

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Empty cache should have 0 entries, got %d", stats.Entries)
	}

	for _, name := range []string{"A.cs", "B.cs", "C.cs"} {
		if err := c.Store(name, []byte(dogSource), sampleFile(name), nil); err != nil {
			t.Fatalf("Store() error: %v", err)
		}
	}

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 3 {
		t.Errorf("Cache should have 3 entries, got %d", stats.Entries)
	}
	if stats.TotalSize <= 0 {
		t.Error("TotalSize should be positive")
	}
}

func TestTTLExpiration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping TTL test in short mode")
	}

	c := &Cache{
		dir:     filepath.Join(t.TempDir(), "cache"),
		ttl:     1 * time.Second,
		enabled: true,
	}
	os.MkdirAll(c.dir, 0755)

	content := []byte(dogSource)
	if err := c.Store("Dog.cs", content, sampleFile("Dog.cs"), nil); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if _, _, ok := c.Lookup("Dog.cs", content); !ok {
		t.Error("Lookup() should hit before TTL expires")
	}

	time.Sleep(2 * time.Second)

	if _, _, ok := c.Lookup("Dog.cs", content); ok {
		t.Error("Lookup() should miss after TTL expires")
	}
}

func TestKeyPath(t *testing.T) {
	c := newTestCache(t)

	path1 := c.keyPath("src/A.cs")
	path2 := c.keyPath("src/B.cs")
	path3 := c.keyPath("src/A.cs")

	if path1 == path2 {
		t.Error("Different paths should produce different entries")
	}
	if path1 != path3 {
		t.Error("Same paths should produce same entries")
	}
	if filepath.Ext(path1) != ".json" {
		t.Errorf("Entry path should end with .json, got %s", path1)
	}
	if filepath.Dir(path1) != c.dir {
		t.Errorf("Entry path should be in cache directory")
	}
}
