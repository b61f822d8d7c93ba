package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asynkron/strainer/internal/tokenize"
)

func TestModeFrom(t *testing.T) {
	tests := []struct {
		name     string
		sameFile bool
		remove   bool
		want     Mode
		wantErr  error
	}{
		{"default", false, false, AllFiles, nil},
		{"same file", true, false, SameFile, nil},
		{"remove with same file", true, true, RemoveDuplicates, nil},
		{"remove without same file", false, true, AllFiles, ErrRemoveNeedsSameFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModeFrom(tt.sameFile, tt.remove)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultSettingsBuildDefaultOptions(t *testing.T) {
	opts, err := DefaultSettings().Options()
	require.NoError(t, err)

	assert.Equal(t, AllFiles, opts.Mode)
	assert.Equal(t, '\n', opts.Tokenize.Delimiter)
	assert.Empty(t, opts.Tokenize.Squash)
	assert.False(t, opts.Tokenize.Trim)
	assert.False(t, opts.Blocks)
	assert.Equal(t, MaxWorkers, opts.Workers)
	assert.True(t, opts.Tokenize.Pattern.Match("anything"))
}

func TestSettingsOptionsRejectsRemoveWithoutSameFile(t *testing.T) {
	s := DefaultSettings()
	s.RemoveDuplicates = true

	_, err := s.Options()
	assert.ErrorIs(t, err, ErrRemoveNeedsSameFile)
}

func TestSettingsOptionsRejectsWorkers(t *testing.T) {
	for _, workers := range []int{0, -1, 257} {
		s := DefaultSettings()
		s.Workers = workers

		_, err := s.Options()
		assert.ErrorIs(t, err, ErrInvalidWorkers, "workers=%d", workers)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{".", '.', false},
		{`\n`, '\n', false},
		{`\t`, '\t', false},
		{`\x00`, 0, false},
		{"\n", '\n', false},
		{"é", 'é', false},
		{"", 0, true},
		{"ab", 0, true},
		{`\n\n`, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidDelimiter, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestLoadSettingsOverlaysBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `line_delimiter: "."
squash_chars: " \t"
trim_whitespace: true
same_file: true
exclude:
  - "*.lock"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSettings(path, DefaultSettings(), true)
	require.NoError(t, err)

	assert.Equal(t, ".", s.LineDelimiter)
	assert.Equal(t, " \t", s.SquashChars)
	assert.True(t, s.TrimWhitespace)
	assert.True(t, s.SameFile)
	assert.Equal(t, []string{"*.lock"}, s.Exclude)
	// Untouched keys keep their defaults.
	assert.Equal(t, "*", s.PathPattern)
	assert.Equal(t, MaxWorkers, s.Workers)

	opts, err := s.Options()
	require.NoError(t, err)
	assert.Equal(t, SameFile, opts.Mode)
	assert.Equal(t, []rune{' ', '\t'}, opts.Tokenize.Squash)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	s, err := LoadSettings(path, DefaultSettings(), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	_, err = LoadSettings(path, DefaultSettings(), true)
	assert.Error(t, err)
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [not, a, number"), 0o644))

	_, err := LoadSettings(path, DefaultSettings(), true)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	base := DefaultOptions()
	assert.Equal(t, base.Fingerprint(), DefaultOptions().Fingerprint())

	trimmed := DefaultOptions()
	trimmed.Tokenize.Trim = true
	assert.NotEqual(t, base.Fingerprint(), trimmed.Fingerprint())

	blocks := DefaultOptions()
	blocks.Blocks = true
	assert.NotEqual(t, base.Fingerprint(), blocks.Fingerprint())

	// The pattern defaults to match-all when unset.
	unset := DefaultOptions()
	unset.Tokenize = tokenize.Options{Delimiter: '\n'}
	assert.Equal(t, base.Fingerprint(), unset.Fingerprint())

	// Worker count does not change what a file's index contains.
	workers := DefaultOptions()
	workers.Workers = 3
	assert.Equal(t, base.Fingerprint(), workers.Fingerprint())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "all-files", AllFiles.String())
	assert.Equal(t, "same-file", SameFile.String())
	assert.Equal(t, "remove-duplicates", RemoveDuplicates.String())
}
