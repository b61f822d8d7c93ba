package search

import (
	"io/fs"
	"path/filepath"

	"github.com/asynkron/strainer/internal/config"
	"github.com/asynkron/strainer/internal/pattern"
)

// skipDirs are never descended into below the root.
var skipDirs = map[string]bool{
	config.Dir: true,
	".git":     true,
}

// ListFiles walks root in lexical order and returns the regular files
// whose path matches pathPattern and whose base name matches none of
// exclude. A root that is itself a file is listed when it matches.
func ListFiles(root string, pathPattern pattern.Pattern, exclude []pattern.Pattern) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !pathPattern.Match(path) {
			return nil
		}
		for _, ex := range exclude {
			if ex.Match(d.Name()) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
