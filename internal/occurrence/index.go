// Package occurrence records where canonical values were seen and turns
// the recorded locations into duplicate reports.
package occurrence

import (
	"fmt"
	"sort"
)

// Location is one occurrence site. Line is zero-based: the number of
// delimiters seen in the file before the owning line was completed.
type Location struct {
	Path string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

// Index maps a canonical value to its locations in discovery order.
type Index map[string][]Location

// Record appends loc to the locations of key.
func (idx Index) Record(key string, loc Location) {
	idx[key] = append(idx[key], loc)
}

// Merge moves every entry of source into target, concatenating location
// lists when a key already exists. source is emptied.
func Merge(target, source Index) {
	for key, locs := range source {
		target[key] = append(target[key], locs...)
		delete(source, key)
	}
}

// Duplicate is a canonical value recorded at two or more locations.
type Duplicate struct {
	Content   string
	Locations []Location
}

// Duplicates collects the entries with at least two locations from each
// index, sorted by content. Locations are ordered by path, then line, so
// the result does not depend on merge order. Entries with equal content
// (possible when the indices are per file) are ordered by their first
// location.
func Duplicates(indices ...Index) []Duplicate {
	var dups []Duplicate
	for _, idx := range indices {
		for content, locs := range idx {
			if len(locs) < 2 {
				continue
			}
			sort.SliceStable(locs, func(i, j int) bool { return lessLocation(locs[i], locs[j]) })
			dups = append(dups, Duplicate{Content: content, Locations: locs})
		}
	}

	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Content != dups[j].Content {
			return dups[i].Content < dups[j].Content
		}
		return lessLocation(dups[i].Locations[0], dups[j].Locations[0])
	})
	return dups
}

// FilesInvolved counts the distinct paths named by dups.
func FilesInvolved(dups []Duplicate) int {
	seen := make(map[string]bool)
	for _, d := range dups {
		for _, loc := range d.Locations {
			seen[loc.Path] = true
		}
	}
	return len(seen)
}

func lessLocation(a, b Location) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Line < b.Line
}
