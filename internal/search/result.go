package search

import (
	"sync"

	"github.com/asynkron/strainer/internal/config"
	"github.com/asynkron/strainer/internal/occurrence"
)

// SearchResult is the shared state of one run. Each mode has its own
// variant holding only what that mode needs:
//
//   - *AllFilesResult: one corpus-wide index
//   - *SameFileResult: one index per file
//   - RemoveDuplicatesResult: nothing
type SearchResult interface {
	Mode() config.Mode
}

// NewSearchResult returns the empty result variant for mode.
func NewSearchResult(mode config.Mode) SearchResult {
	switch mode {
	case config.SameFile:
		return &SameFileResult{}
	case config.RemoveDuplicates:
		return RemoveDuplicatesResult{}
	default:
		return &AllFilesResult{index: make(occurrence.Index)}
	}
}

// AllFilesResult merges every file's index into one.
type AllFilesResult struct {
	mu    sync.Mutex
	index occurrence.Index
}

func (r *AllFilesResult) Mode() config.Mode { return config.AllFiles }

// add merges idx, emptying it. This is the only locked operation.
func (r *AllFilesResult) add(idx occurrence.Index) {
	r.mu.Lock()
	occurrence.Merge(r.index, idx)
	r.mu.Unlock()
}

// Duplicates returns the sorted corpus-wide duplicates.
func (r *AllFilesResult) Duplicates() []occurrence.Duplicate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return occurrence.Duplicates(r.index)
}

// SameFileResult keeps each file's index separate.
type SameFileResult struct {
	mu      sync.Mutex
	indices []occurrence.Index
}

func (r *SameFileResult) Mode() config.Mode { return config.SameFile }

func (r *SameFileResult) add(idx occurrence.Index) {
	r.mu.Lock()
	r.indices = append(r.indices, idx)
	r.mu.Unlock()
}

// Duplicates returns the sorted per-file duplicates of all files.
func (r *SameFileResult) Duplicates() []occurrence.Duplicate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return occurrence.Duplicates(r.indices...)
}

// RemoveDuplicatesResult carries no state: files are rewritten in place.
type RemoveDuplicatesResult struct{}

func (RemoveDuplicatesResult) Mode() config.Mode { return config.RemoveDuplicates }
