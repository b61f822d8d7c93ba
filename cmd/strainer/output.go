package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/asynkron/strainer/internal/occurrence"
	"github.com/asynkron/strainer/internal/search"
)

// Theme defines the color scheme for console output
type Theme struct {
	Location lipgloss.Style
	LineNum  lipgloss.Style
	Summary  lipgloss.Style
	Dim      lipgloss.Style
}

// DefaultTheme is the default color scheme
var DefaultTheme = Theme{
	Location: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	LineNum:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Summary:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var (
	theme           = DefaultTheme
	out   io.Writer = os.Stdout
)

// PrintSearchStart prints the initial message
func PrintSearchStart() {
	fmt.Fprintln(out, "Searching...")
}

func renderLocation(loc occurrence.Location) string {
	return theme.Location.Render(loc.Path) +
		theme.Dim.Render(":") +
		theme.LineNum.Render(strconv.Itoa(loc.Line))
}

// PrintDuplicates prints every duplicate followed by its locations, one
// per tab-indented line.
func PrintDuplicates(dups []occurrence.Duplicate) {
	var sb strings.Builder
	for _, d := range dups {
		sb.WriteString("\n\n")
		sb.WriteString(d.Content)
		for _, loc := range d.Locations {
			sb.WriteString("\n\t")
			sb.WriteString(renderLocation(loc))
		}
	}
	fmt.Fprintln(out, sb.String())
	fmt.Fprintln(out)
}

// langFromExt maps file extensions to markdown code block language hints
var langFromExt = map[string]string{
	".go":    "go",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".kt":    "kotlin",
	".rs":    "rust",
	".php":   "php",
	".py":    "python",
	".rb":    "ruby",
	".sh":    "bash",
	".sql":   "sql",
	".lua":   "lua",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".json":  "json",
	".xml":   "xml",
	".html":  "html",
	".css":   "css",
	".md":    "markdown",
	".swift": "swift",
}

// langFor picks the code block language of a duplicate from the first of
// its locations that has a file extension.
func langFor(locs []occurrence.Location) string {
	for _, loc := range locs {
		ext := filepath.Ext(loc.Path)
		if ext == "" {
			continue
		}
		if lang, ok := langFromExt[ext]; ok {
			return lang
		}
		return strings.TrimPrefix(ext, ".")
	}
	return ""
}

// highlightedMarkdown lays duplicates out as fenced code blocks so the
// renderer can color them per language.
func highlightedMarkdown(dups []occurrence.Duplicate) string {
	var sb strings.Builder
	for i, d := range dups {
		sb.WriteString(fmt.Sprintf("**Duplicate %d** (%d occurrences)\n\n", i+1, len(d.Locations)))
		sb.WriteString(fmt.Sprintf("```%s\n%s\n```\n\n", langFor(d.Locations), d.Content))
		for _, loc := range d.Locations {
			sb.WriteString(fmt.Sprintf("- `%s`\n", loc))
		}
		sb.WriteString("\n---\n\n")
	}
	return sb.String()
}

// PrintHighlighted prints duplicates syntax-highlighted by file extension
func PrintHighlighted(dups []occurrence.Duplicate) {
	renderMarkdown(highlightedMarkdown(dups))
}

// renderMarkdown renders markdown for the terminal
func renderMarkdown(markdown string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err == nil {
		var rendered string
		if rendered, err = r.Render(markdown); err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	// Fallback to plain markdown
	fmt.Fprint(out, markdown)
}

// PrintSummary prints the counts of a search run
func PrintSummary(r *search.Report) {
	fmt.Fprintf(out, "Searched %s files %s\n",
		humanize.Comma(int64(r.FilesScanned)),
		theme.Dim.Render(fmt.Sprintf("(%s read)", humanize.Bytes(uint64(r.BytesRead)))))
	if r.CacheHits > 0 {
		fmt.Fprintf(out, "%s\n", theme.Dim.Render(fmt.Sprintf("%d files unchanged since the last run", r.CacheHits)))
	}
	if r.FilesSkipped > 0 {
		fmt.Fprintf(out, "%s\n", theme.Dim.Render(fmt.Sprintf("Skipped %d unreadable files", r.FilesSkipped)))
	}
	fmt.Fprintf(out, "Found %s duplicated lines across %s of them\n",
		theme.Summary.Render(strconv.Itoa(len(r.Duplicates))),
		theme.Summary.Render(strconv.Itoa(r.FilesWithDuplicates)))
}

// PrintRemoveSummary prints the outcome of a rewrite run
func PrintRemoveSummary(r *search.Report) {
	fmt.Fprintf(out, "Searched %s files and removed any duplicate lines\n", humanize.Comma(int64(r.FilesScanned)))
	fmt.Fprintf(out, "%s\n", theme.Dim.Render(fmt.Sprintf("Rewrote %d files", r.FilesChanged)))
}

// PrintTimings prints how long listing and processing took
func PrintTimings(listing, processing time.Duration) {
	fmt.Fprintf(out, "Determining file list took %dms\n", listing.Milliseconds())
	fmt.Fprintf(out, "Processing files took %dms\n", processing.Milliseconds())
}

// JSONLocation is one occurrence in the results file
type JSONLocation struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// JSONDuplicate is one duplicated value in the results file
type JSONDuplicate struct {
	Content     string         `json:"content"`
	Occurrences int            `json:"occurrences"`
	Locations   []JSONLocation `json:"locations"`
}

// JSONOutput is the results file format
type JSONOutput struct {
	FilesScanned        int             `json:"files_scanned"`
	TotalDuplicates     int             `json:"total_duplicates"`
	FilesWithDuplicates int             `json:"files_with_duplicates"`
	Duplicates          []JSONDuplicate `json:"duplicates"`
}

// WriteJSONResults writes the results to a JSON file
func WriteJSONResults(r *search.Report, outputPath string) error {
	jsonOutput := JSONOutput{
		FilesScanned:        r.FilesScanned,
		TotalDuplicates:     len(r.Duplicates),
		FilesWithDuplicates: r.FilesWithDuplicates,
		Duplicates:          make([]JSONDuplicate, 0, len(r.Duplicates)),
	}

	for _, d := range r.Duplicates {
		locs := make([]JSONLocation, len(d.Locations))
		for i, loc := range d.Locations {
			locs[i] = JSONLocation{Path: loc.Path, Line: loc.Line}
		}
		jsonOutput.Duplicates = append(jsonOutput.Duplicates, JSONDuplicate{
			Content:     d.Content,
			Occurrences: len(d.Locations),
			Locations:   locs,
		})
	}

	// Create output directory
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(jsonOutput, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}

	fmt.Fprintf(out, "Results written to: %s\n", theme.Location.Render(outputPath))
	return nil
}
