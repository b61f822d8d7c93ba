package search

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/asynkron/strainer/internal/occurrence"
)

const (
	cacheVersion  = 1
	cacheFileName = "cache.gob"
)

// CachedFile stores one file's index with the stat data it was built from
type CachedFile struct {
	ModTime int64
	Size    int64
	Lines   map[string][]int // canonical value -> line indices
}

// FileCache is the on-disk format
type FileCache struct {
	Version     int    // cache format version for invalidation
	Fingerprint string // options the indices were built with
	Files       map[string]CachedFile
}

// Cache serves per-file indices from a previous run. Loaded entries are
// only read during a run; entries used or built by the run are collected
// separately and become the next cache on Save.
type Cache struct {
	dir         string
	fingerprint string
	loaded      map[string]CachedFile

	mu    sync.Mutex
	fresh map[string]CachedFile
}

// CachePath returns the cache file location inside dir.
func CachePath(dir string) string {
	return filepath.Join(dir, cacheFileName)
}

// LoadCache opens the cache in dir for options with the given
// fingerprint. The returned cache is always usable; a non-nil error
// explains why previous entries were discarded.
func LoadCache(dir, fingerprint string) (*Cache, error) {
	c := &Cache{
		dir:         dir,
		fingerprint: fingerprint,
		loaded:      make(map[string]CachedFile),
		fresh:       make(map[string]CachedFile),
	}

	file, err := os.Open(CachePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	defer file.Close()

	var fc FileCache
	if err := gob.NewDecoder(file).Decode(&fc); err != nil {
		return c, fmt.Errorf("decoding cache: %w", err)
	}

	// Check version and options
	if fc.Version != cacheVersion || fc.Fingerprint != fingerprint {
		return c, nil
	}
	if fc.Files != nil {
		c.loaded = fc.Files
	}
	return c, nil
}

// Lookup returns the cached index of path if the file is unchanged.
func (c *Cache) Lookup(path string, info os.FileInfo) (occurrence.Index, bool) {
	cached, ok := c.loaded[path]
	if !ok || cached.ModTime != info.ModTime().UnixNano() || cached.Size != info.Size() {
		return nil, false
	}

	c.mu.Lock()
	c.fresh[path] = cached
	c.mu.Unlock()

	idx := make(occurrence.Index, len(cached.Lines))
	for content, lines := range cached.Lines {
		for _, line := range lines {
			idx.Record(content, occurrence.Location{Path: path, Line: line})
		}
	}
	return idx, true
}

// Store remembers the freshly built index of path. It must be called
// before idx is merged away.
func (c *Cache) Store(path string, info os.FileInfo, idx occurrence.Index) {
	lines := make(map[string][]int, len(idx))
	for content, locs := range idx {
		l := make([]int, len(locs))
		for i, loc := range locs {
			l[i] = loc.Line
		}
		lines[content] = l
	}

	c.mu.Lock()
	c.fresh[path] = CachedFile{
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
		Lines:   lines,
	}
	c.mu.Unlock()
}

// Len returns the number of entries collected by this run.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fresh)
}

// Save writes the entries collected by this run.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	file, err := os.Create(CachePath(c.dir))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer file.Close()

	fc := FileCache{
		Version:     cacheVersion,
		Fingerprint: c.fingerprint,
		Files:       c.fresh,
	}
	if err := gob.NewEncoder(file).Encode(fc); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return file.Close()
}
