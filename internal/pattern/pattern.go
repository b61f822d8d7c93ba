// Package pattern implements the basic wildcard patterns used to filter
// file paths and line content. A pattern is a list of literal segments
// separated by '*'; there is no escaping and no character classes.
package pattern

import "strings"

// Wildcard separates literal segments.
const Wildcard = "*"

// Pattern is a parsed wildcard pattern: the literal segments in order.
type Pattern []string

// Any matches every string.
var Any = Parse(Wildcard)

// Parse splits s on '*'. Consecutive wildcards produce empty segments,
// which always match at the current position.
func Parse(s string) Pattern {
	return Pattern(strings.Split(s, Wildcard))
}

// Match reports whether s matches p.
//
// Segments are located greedily, leftmost first, with no backtracking.
// After a segment is found the remaining subject starts at the found
// index, not past it.
func (p Pattern) Match(s string) bool {
	remainder := s
	for _, segment := range p {
		index := strings.Index(remainder, segment)
		if index < 0 {
			return false
		}
		remainder = remainder[index:]
	}
	return true
}

// String rebuilds the pattern text.
func (p Pattern) String() string {
	return strings.Join(p, Wildcard)
}
