// Package config holds the run configuration: the search mode, the
// tokenizer options and the worker cap, plus the YAML/flag settings they
// are built from.
package config

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/asynkron/strainer/internal/pattern"
	"github.com/asynkron/strainer/internal/tokenize"
)

// MaxWorkers is the default cap on worker goroutines for one run.
const MaxWorkers = 10

// workerLimit bounds a configured worker cap.
const workerLimit = 256

var (
	ErrRemoveNeedsSameFile = errors.New("can't use --remove-duplicates without --same-file")
	ErrInvalidDelimiter    = errors.New("line delimiter must be exactly one character")
	ErrInvalidWorkers      = fmt.Errorf("workers must be between 1 and %d", workerLimit)
)

// Mode selects how results are aggregated. It is chosen once per run.
type Mode int

const (
	// AllFiles reports duplicates across the whole corpus.
	AllFiles Mode = iota
	// SameFile reports duplicates within each file separately.
	SameFile
	// RemoveDuplicates rewrites each file in place without its repeated lines.
	RemoveDuplicates
)

func (m Mode) String() string {
	switch m {
	case AllFiles:
		return "all-files"
	case SameFile:
		return "same-file"
	case RemoveDuplicates:
		return "remove-duplicates"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeFrom picks the mode from the two CLI switches. Removing duplicates
// is only allowed with per-file scoping.
func ModeFrom(sameFile, removeDuplicates bool) (Mode, error) {
	switch {
	case removeDuplicates && !sameFile:
		return AllFiles, ErrRemoveNeedsSameFile
	case removeDuplicates:
		return RemoveDuplicates, nil
	case sameFile:
		return SameFile, nil
	default:
		return AllFiles, nil
	}
}

// Options is a validated run configuration.
type Options struct {
	Tokenize tokenize.Options
	Blocks   bool
	Mode     Mode
	Workers  int
}

// DefaultOptions returns the configuration used when nothing is set.
func DefaultOptions() Options {
	return Options{
		Tokenize: tokenize.DefaultOptions(),
		Mode:     AllFiles,
		Workers:  MaxWorkers,
	}
}

// Validate checks the invariants every run relies on.
func (o Options) Validate() error {
	if o.Workers < 1 || o.Workers > workerLimit {
		return fmt.Errorf("%w (got %d)", ErrInvalidWorkers, o.Workers)
	}
	return nil
}

// Fingerprint identifies the options that shape a file's index. Cached
// per-file results are only valid for an identical fingerprint.
func (o Options) Fingerprint() string {
	linePattern := o.Tokenize.Pattern
	if linePattern == nil {
		linePattern = pattern.Any
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "delim=%q|squash=%q|trim=%t|pattern=%q|blocks=%t",
		o.Tokenize.Delimiter, string(o.Tokenize.Squash), o.Tokenize.Trim,
		linePattern.String(), o.Blocks)
	return fmt.Sprintf("%016x", h.Sum64())
}
