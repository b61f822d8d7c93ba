// Package search runs one duplicate search over a list of files: it
// splits the list across a bounded set of workers, tokenizes each file and
// aggregates the per-file indices according to the run's mode.
package search

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/asynkron/strainer/internal/blocks"
	"github.com/asynkron/strainer/internal/config"
	"github.com/asynkron/strainer/internal/diag"
	"github.com/asynkron/strainer/internal/occurrence"
	"github.com/asynkron/strainer/internal/tokenize"
)

// Report is the aggregated outcome of a run.
type Report struct {
	Mode                config.Mode
	FilesScanned        int
	FilesSkipped        int // unreadable files left out of the results
	FilesChanged        int // files rewritten in RemoveDuplicates mode
	CacheHits           int
	BytesRead           int64
	Duplicates          []occurrence.Duplicate
	FilesWithDuplicates int
}

// Searcher runs searches with fixed options.
type Searcher struct {
	opts  config.Options
	log   *zap.Logger
	cache *Cache
}

// New returns a Searcher. A nil log discards diagnostics.
func New(opts config.Options, log *zap.Logger) *Searcher {
	return &Searcher{opts: opts, log: diag.OrNop(log)}
}

// WithCache serves unchanged files from c and records fresh indices in
// it. The cache is not used when removing duplicates.
func (s *Searcher) WithCache(c *Cache) *Searcher {
	s.cache = c
	return s
}

type runStats struct {
	skipped   atomic.Int64
	changed   atomic.Int64
	cacheHits atomic.Int64
	bytes     atomic.Int64
}

// Chunks splits files into contiguous chunks of ceil(len(files)/workers)
// files. Fewer chunks than workers are returned when files run out.
func Chunks(files []string, workers int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	size := (len(files) + workers - 1) / workers
	chunks := make([][]string, 0, workers)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		chunks = append(chunks, files[start:end])
	}
	return chunks
}

// Run searches files. Each chunk is processed in order by its own worker.
//
// Unreadable files are dropped when counting. When removing duplicates
// the first read or write failure aborts the run: the other workers stop
// before their next file and the failure is returned.
func (s *Searcher) Run(ctx context.Context, files []string) (*Report, error) {
	result := NewSearchResult(s.opts.Mode)
	chunks := Chunks(files, s.opts.Workers)
	s.log.Debug("starting workers",
		zap.Stringer("mode", s.opts.Mode),
		zap.Int("files", len(files)),
		zap.Int("workers", len(chunks)))

	var stats runStats
	g, ctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		g.Go(func() error {
			for _, path := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.process(result, path, &stats); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Mode:         s.opts.Mode,
		FilesScanned: len(files),
		FilesSkipped: int(stats.skipped.Load()),
		FilesChanged: int(stats.changed.Load()),
		CacheHits:    int(stats.cacheHits.Load()),
		BytesRead:    stats.bytes.Load(),
	}
	switch r := result.(type) {
	case *AllFilesResult:
		report.Duplicates = r.Duplicates()
	case *SameFileResult:
		report.Duplicates = r.Duplicates()
	}
	report.FilesWithDuplicates = occurrence.FilesInvolved(report.Duplicates)
	return report, nil
}

func (s *Searcher) process(result SearchResult, path string, stats *runStats) error {
	switch r := result.(type) {
	case RemoveDuplicatesResult:
		return s.dedupeFile(path, stats)
	case *SameFileResult:
		if idx, ok := s.searchFile(path, stats); ok {
			r.add(idx)
		}
	case *AllFilesResult:
		if idx, ok := s.searchFile(path, stats); ok {
			r.add(idx)
		}
	}
	return nil
}

// searchFile builds the index of one file. A file that can't be read
// contributes nothing.
func (s *Searcher) searchFile(path string, stats *runStats) (occurrence.Index, bool) {
	var info os.FileInfo
	if s.cache != nil {
		var err error
		if info, err = os.Stat(path); err != nil {
			s.skip(path, err, stats)
			return nil, false
		}
		if idx, ok := s.cache.Lookup(path, info); ok {
			stats.cacheHits.Add(1)
			return idx, true
		}
	}

	text, err := readText(path)
	if err != nil {
		s.skip(path, err, stats)
		return nil, false
	}
	stats.bytes.Add(int64(len(text)))

	idx := s.index(path, text)
	if s.cache != nil {
		s.cache.Store(path, info, idx)
	}
	return idx, true
}

func (s *Searcher) index(path, text string) occurrence.Index {
	if s.opts.Blocks {
		return blocks.Count(path, tokenize.BlockLines(text, s.opts.Tokenize))
	}
	return tokenize.CountLines(path, text, s.opts.Tokenize)
}

func (s *Searcher) skip(path string, err error, stats *runStats) {
	stats.skipped.Add(1)
	s.log.Debug("skipping file", zap.String("path", path), zap.Error(err))
}

// dedupeFile rewrites path without its repeated lines. Files without
// repeated lines are left untouched.
func (s *Searcher) dedupeFile(path string, stats *runStats) error {
	text, err := readText(path)
	if err != nil {
		return fmt.Errorf("removing duplicates: %w", err)
	}
	stats.bytes.Add(int64(len(text)))

	rewritten := tokenize.Rewrite(text, s.opts.Tokenize)
	if rewritten == text {
		return nil
	}
	if err := writeText(path, rewritten); err != nil {
		return fmt.Errorf("removing duplicates: %w", err)
	}

	stats.changed.Add(1)
	s.log.Debug("removed duplicate lines",
		zap.String("path", path),
		zap.Int("bytes_removed", len(text)-len(rewritten)))
	return nil
}
