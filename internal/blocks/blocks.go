// Package blocks finds repeated runs of consecutive lines.
package blocks

import (
	"strings"

	"github.com/asynkron/strainer/internal/occurrence"
)

// MinLines is the shortest run reported as a block.
const MinLines = 2

// Enumerate returns, for every distinct run of at least MinLines
// consecutive lines, the ascending start indices at which it occurs.
// Runs seen only once are included; whether they are duplicates depends
// on what else ends up in the same index.
//
// The key of a run is its lines joined with "\n". Keys for one start are
// built by extending the previous key by one line.
func Enumerate(lines []string) map[string][]int {
	n := len(lines)
	starts := make(map[string][]int)

	var key strings.Builder
	for i := 0; i+MinLines <= n; i++ {
		key.Reset()
		key.WriteString(lines[i])
		for j := i + 1; j < n; j++ {
			key.WriteByte('\n')
			key.WriteString(lines[j])
			k := key.String()
			starts[k] = append(starts[k], i)
		}
	}
	return starts
}

// Count records every block of lines into a fresh index, once per start
// index, each location pointing at the block's first line.
func Count(path string, lines []string) occurrence.Index {
	records := make(occurrence.Index)
	for block, starts := range Enumerate(lines) {
		for _, start := range starts {
			records.Record(block, occurrence.Location{Path: path, Line: start})
		}
	}
	return records
}
