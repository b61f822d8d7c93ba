package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/asynkron/strainer/internal/config"
	"github.com/asynkron/strainer/internal/diag"
	"github.com/asynkron/strainer/internal/pattern"
	"github.com/asynkron/strainer/internal/search"
)

// cliFlags holds the values bound to the command line flags.
type cliFlags struct {
	pathPattern   string
	exclude       []string
	lineDelimiter string
	linePattern   string
	squashChars   []string
	trim          bool
	sameFile      bool
	blocks        bool
	remove        bool
	workers       int

	configPath string
	jsonPath   string
	highlight  bool
	cache      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	cmd := &cobra.Command{
		Use:   "strainer [flags] DIRECTORY",
		Short: "Find duplicate lines in text files",
		Long: `Find lines, or whole blocks of lines, that occur more than once in the
files below DIRECTORY.

Settings are read from DIRECTORY/.strainer/config.yaml when present;
flags given on the command line take precedence.

Examples:
  # Duplicate lines across all Go files, ignoring indentation
  strainer -p '*.go' -t .

  # Duplicate sentences within each file
  strainer -d . -f docs

  # Drop repeated lines from every file (rewrites files in place)
  strainer -f -r logs`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.Flags(), &f, args[0])
		},
	}

	bindFlags(cmd.Flags(), &f)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, f *cliFlags) {
	defaults := config.DefaultSettings()
	fs.StringVarP(&f.pathPattern, "path-pattern", "p", defaults.PathPattern, "Only search files whose path matches `PAT` ('*' matches any substring)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Skip files whose name matches any of these patterns (e.g. '*.pb.go,*.lock')")
	fs.StringVarP(&f.lineDelimiter, "line-delimiter", "d", defaults.LineDelimiter, "The `CHAR` that ends a line, e.g. '.' to split prose into sentences")
	fs.StringVarP(&f.linePattern, "line-pattern", "l", defaults.LinePattern, "Only report lines matching `PAT` ('*' matches any substring)")
	fs.StringArrayVarP(&f.squashChars, "squash-chars", "s", nil, "Treat runs of these characters as a single character")
	fs.BoolVarP(&f.trim, "trim-whitespace", "t", false, "Trim whitespace from both ends of each line before comparing")
	fs.BoolVarP(&f.sameFile, "same-file", "f", false, "Only look for duplicates within the same file")
	fs.BoolVarP(&f.blocks, "blocks", "b", false, "Look for repeated blocks of two or more lines")
	fs.BoolVarP(&f.remove, "remove-duplicates", "r", false, "Remove repeated lines, keeping the first. Requires --same-file. Overwrites files!")
	fs.IntVar(&f.workers, "workers", defaults.Workers, "Maximum number of files searched in parallel")
	fs.StringVar(&f.configPath, "config", "", "Read settings from this YAML file")
	fs.StringVar(&f.jsonPath, "json", "", "Also write the results to this JSON file")
	fs.BoolVar(&f.highlight, "highlight", false, "Syntax-highlight duplicates by file extension")
	fs.BoolVar(&f.cache, "cache", false, "Reuse results of unchanged files from the previous run")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log skipped files and other diagnostics")
}

// stateDir is the directory holding the config file and the cache of a
// search root.
func stateDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	return filepath.Join(root, config.Dir)
}

// loadSettings layers the defaults, the config file and the flags that
// were set explicitly.
func loadSettings(fs *pflag.FlagSet, f *cliFlags, root string) (config.Settings, error) {
	path, required := f.configPath, f.configPath != ""
	if !required {
		path = filepath.Join(stateDir(root), config.FileName)
	}

	s, err := config.LoadSettings(path, config.DefaultSettings(), required)
	if err != nil {
		return s, err
	}

	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "path-pattern":
			s.PathPattern = f.pathPattern
		case "exclude":
			s.Exclude = f.exclude
		case "line-delimiter":
			s.LineDelimiter = f.lineDelimiter
		case "line-pattern":
			s.LinePattern = f.linePattern
		case "squash-chars":
			s.SquashChars = strings.Join(f.squashChars, "")
		case "trim-whitespace":
			s.TrimWhitespace = f.trim
		case "same-file":
			s.SameFile = f.sameFile
		case "blocks":
			s.Blocks = f.blocks
		case "remove-duplicates":
			s.RemoveDuplicates = f.remove
		case "workers":
			s.Workers = f.workers
		}
	})
	return s, nil
}

func run(ctx context.Context, fs *pflag.FlagSet, f *cliFlags, root string) error {
	log, err := diag.NewLogger(f.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	settings, err := loadSettings(fs, f, root)
	if err != nil {
		return err
	}
	opts, err := settings.Options()
	if err != nil {
		return err
	}

	excludes := make([]pattern.Pattern, len(settings.Exclude))
	for i, ex := range settings.Exclude {
		excludes[i] = pattern.Parse(ex)
	}

	PrintSearchStart()
	startListing := time.Now()
	files, err := search.ListFiles(root, pattern.Parse(settings.PathPattern), excludes)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	listing := time.Since(startListing)
	log.Debug("listed files", zap.Int("count", len(files)), zap.Duration("took", listing))

	searcher := search.New(opts, log)
	var cache *search.Cache
	if f.cache && opts.Mode != config.RemoveDuplicates {
		cache, err = search.LoadCache(stateDir(root), opts.Fingerprint())
		if err != nil {
			log.Warn("discarding cache", zap.Error(err))
		}
		searcher.WithCache(cache)
	}

	startProcessing := time.Now()
	report, err := searcher.Run(ctx, files)
	if err != nil {
		return err
	}
	processing := time.Since(startProcessing)

	if cache != nil {
		if err := cache.Save(); err != nil {
			log.Warn("saving cache", zap.Error(err))
		}
	}

	if report.Mode == config.RemoveDuplicates {
		PrintRemoveSummary(report)
	} else {
		if f.highlight {
			PrintHighlighted(report.Duplicates)
		} else {
			PrintDuplicates(report.Duplicates)
		}
		PrintSummary(report)
		if f.jsonPath != "" {
			if err := WriteJSONResults(report, f.jsonPath); err != nil {
				return err
			}
		}
	}
	PrintTimings(listing, processing)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}
