package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/asynkron/strainer/internal/pattern"
)

// Dir is the per-root directory holding the config file and cache.
const Dir = ".strainer"

// FileName is the config file looked up inside Dir.
const FileName = "config.yaml"

// Settings is the raw, unvalidated configuration as written in the YAML
// file or on the command line.
type Settings struct {
	PathPattern      string   `yaml:"path_pattern"`
	Exclude          []string `yaml:"exclude,omitempty"`
	LineDelimiter    string   `yaml:"line_delimiter"`
	LinePattern      string   `yaml:"line_pattern"`
	SquashChars      string   `yaml:"squash_chars,omitempty"`
	TrimWhitespace   bool     `yaml:"trim_whitespace"`
	Blocks           bool     `yaml:"blocks"`
	SameFile         bool     `yaml:"same_file"`
	RemoveDuplicates bool     `yaml:"remove_duplicates"`
	Workers          int      `yaml:"workers"`
}

// DefaultSettings returns the settings used when neither a file nor a
// flag sets a value.
func DefaultSettings() Settings {
	return Settings{
		PathPattern:   pattern.Wildcard,
		LineDelimiter: `\n`,
		LinePattern:   pattern.Wildcard,
		Workers:       MaxWorkers,
	}
}

// DefaultPath returns where the config file of root is looked up.
func DefaultPath(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// LoadSettings reads the YAML file at path over base. Keys missing from
// the file keep their value from base. A missing file is not an error
// unless required is set.
func LoadSettings(path string, base Settings, required bool) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return base, nil
		}
		return base, fmt.Errorf("reading config file: %w", err)
	}

	settings := base
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return base, fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	return settings, nil
}

// Options validates the settings and builds run options from them.
// Configuration errors are reported here, before any file is touched.
func (s Settings) Options() (Options, error) {
	mode, err := ModeFrom(s.SameFile, s.RemoveDuplicates)
	if err != nil {
		return Options{}, err
	}

	delimiter, err := ParseDelimiter(s.LineDelimiter)
	if err != nil {
		return Options{}, err
	}

	opts := DefaultOptions()
	opts.Mode = mode
	opts.Blocks = s.Blocks
	opts.Workers = s.Workers
	opts.Tokenize.Delimiter = delimiter
	opts.Tokenize.Trim = s.TrimWhitespace
	opts.Tokenize.Pattern = pattern.Parse(s.LinePattern)
	opts.Tokenize.Squash = []rune(s.SquashChars)

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// ParseDelimiter accepts a single character or a single Go escape such as
// `\n`, `\t` or `\x00`.
func ParseDelimiter(s string) (rune, error) {
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}

	value, _, tail, err := strconv.UnquoteChar(s, 0)
	if err != nil || tail != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}
	return value, nil
}
