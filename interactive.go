package main

import (
	"errors"
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/afero"
)

// errNoCandidates is returned when the picker has nothing to offer.
var errNoCandidates = errors.New("no files found to select from")

// listCandidates returns the regular files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func listCandidates(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", dir, err)
	}
	var candidates []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return nil, errNoCandidates
	}
	return candidates, nil
}

// runInteractiveFinder lets the user pick files from the current directory.
// It returns glob-escaped patterns, or nil when the user aborted.
func runInteractiveFinder(fs afero.Fs) ([]string, error) {
	candidates, err := listCandidates(fs, ".")
	if err != nil {
		return nil, err
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Tab to select files, Enter to checksum them."
			}
			info, statErr := fs.Stat(candidates[i])
			if statErr != nil {
				return fmt.Sprintf("File: %s\nError: %v", candidates[i], statErr)
			}
			return fmt.Sprintf("File: %s\nSize: %d bytes\nMode: %s", candidates[i], info.Size(), info.Mode())
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	patterns := make([]string, len(idx))
	for i, index := range idx {
		patterns[i] = escapeGlob(candidates[index])
	}
	return patterns, nil
}
