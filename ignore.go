package main

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/spf13/afero"
)

// ignoreFilter reports whether a matched path should be skipped.
type ignoreFilter func(path string) bool

// loadGitignore builds a filter from the .gitignore in dir.
// A missing .gitignore yields a nil filter and no error.
func loadGitignore(fs afero.Fs, dir string) (ignoreFilter, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	gitIgnorePath := filepath.Join(base, ".gitignore")
	file, err := fs.Open(gitIgnorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", gitIgnorePath, err)
	}
	defer file.Close()

	matcher := gitignore.NewGitIgnoreFromReader(base, file)
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		// Only regular files reach the engine, so match as a file.
		return matcher.Match(abs, false)
	}, nil
}
