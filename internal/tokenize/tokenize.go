// Package tokenize turns raw file text into canonical line values.
//
// Three variants exist and they intentionally differ:
//
//   - CountLines applies squash, trim and the line pattern and records
//     each accepted line in an occurrence index.
//   - Rewrite applies squash for comparison only, ignores trim and the
//     line pattern, and blanks out lines whose value was already seen.
//   - BlockLines splits on the delimiter only, then trims and drops empty
//     lines as a separate pass.
package tokenize

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/asynkron/strainer/internal/occurrence"
	"github.com/asynkron/strainer/internal/pattern"
)

// Options controls how text is split and normalized.
type Options struct {
	Delimiter rune
	Squash    []rune
	Trim      bool
	Pattern   pattern.Pattern
}

// DefaultOptions splits on newlines and keeps every non-empty line.
func DefaultOptions() Options {
	return Options{
		Delimiter: '\n',
		Pattern:   pattern.Any,
	}
}

// squashed reports whether c repeats prev and belongs to the squash set.
// A squashed character contributes nothing to the line content and, when
// it is the delimiter, does not complete a line.
func (o Options) squashed(prev, c rune, havePrev bool) bool {
	return havePrev && prev == c && slices.Contains(o.Squash, c)
}

func (o Options) linePattern() pattern.Pattern {
	if o.Pattern == nil {
		return pattern.Any
	}
	return o.Pattern
}

// scanner walks text rune by rune and reports completed lines. It is the
// state machine shared by the count and rewrite pipelines.
type scanner struct {
	opts     Options
	content  strings.Builder
	prev     rune
	havePrev bool
}

// line is a completed line: its squashed content and the byte range of
// its raw text in the input, delimiter excluded.
type line struct {
	content    string
	start, end int
}

// scan calls emit for every line of text, including a trailing line that
// has no delimiter after it.
func (s *scanner) scan(text string, emit func(line)) {
	start := 0
	for i, c := range text {
		switch {
		case s.opts.squashed(s.prev, c, s.havePrev):
			// A squashed delimiter belongs to the run that ended the
			// previous line, not to the next line's text.
			if c == s.opts.Delimiter {
				start = i + utf8.RuneLen(c)
			}
		case c == s.opts.Delimiter:
			emit(line{content: s.content.String(), start: start, end: i})
			s.content.Reset()
			start = i + utf8.RuneLen(c)
		default:
			s.content.WriteRune(c)
		}
		s.prev, s.havePrev = c, true
	}
	emit(line{content: s.content.String(), start: start, end: len(text)})
	s.content.Reset()
}

// CountLines records every accepted line of text under its canonical
// value. Empty lines (after trimming) are never recorded; the line index
// advances on every completed line regardless.
func CountLines(path, text string, opts Options) occurrence.Index {
	records := make(occurrence.Index)
	match := opts.linePattern()

	s := &scanner{opts: opts}
	lineNumber := 0
	s.scan(text, func(l line) {
		content := l.content
		if opts.Trim {
			content = strings.TrimSpace(content)
		}
		if content != "" && match.Match(content) {
			records.Record(content, occurrence.Location{Path: path, Line: lineNumber})
		}
		lineNumber++
	})
	return records
}

// Rewrite returns text with the content of every repeated line removed.
// The first occurrence of a value is kept; later occurrences become empty
// while their delimiter stays in place. Comparison uses the squashed,
// untrimmed line, and the line pattern is not consulted. Kept bytes are
// copied verbatim, squashed runs included.
func Rewrite(text string, opts Options) string {
	var out strings.Builder
	out.Grow(len(text))

	seen := make(map[string]bool)
	s := &scanner{opts: opts}
	last := 0
	s.scan(text, func(l line) {
		// Everything between the previous line and this one is the
		// delimiter that completed the previous line.
		out.WriteString(text[last:l.start])
		if !seen[l.content] {
			seen[l.content] = true
			out.WriteString(text[l.start:l.end])
		}
		last = l.end
	})
	out.WriteString(text[last:])
	return out.String()
}

// BlockLines splits text on the delimiter, optionally trims each line and
// drops empty ones. Squash and the line pattern do not apply. With the
// newline delimiter a trailing carriage return is dropped, so CRLF and LF
// files produce the same blocks.
func BlockLines(text string, opts Options) []string {
	raw := strings.Split(text, string(opts.Delimiter))

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if opts.Delimiter == '\n' {
			l = strings.TrimSuffix(l, "\r")
		}
		if opts.Trim {
			l = strings.TrimSpace(l)
		}
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
