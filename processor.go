package main

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Processor expands path patterns and checksums every match in order.
type Processor struct {
	fs     afero.Fs
	engine *Engine
	opts   Options
	ignore ignoreFilter
	log    logrus.FieldLogger
}

// NewProcessor wires a Processor over fs. The .gitignore of the working
// directory is loaded only when opts.RespectGitignore is set.
func NewProcessor(fs afero.Fs, opts Options, log logrus.FieldLogger) (*Processor, error) {
	p := &Processor{
		fs:     fs,
		engine: NewEngine(fs, log),
		opts:   opts,
		log:    log,
	}
	if opts.RespectGitignore {
		filter, err := loadGitignore(fs, ".")
		if err != nil {
			return nil, err
		}
		p.ignore = filter
	}
	return p, nil
}

// expandPatterns globs each pattern and concatenates the matches in pattern
// order. Duplicates across patterns are kept.
func (p *Processor) expandPatterns(patterns []string) []string {
	var paths []string
	for _, pattern := range patterns {
		matches, err := afero.Glob(p.fs, pattern)
		if err != nil {
			p.log.WithError(err).WithField("pattern", pattern).Warn("invalid glob pattern")
			continue
		}
		// Glob returns nothing, not an error, for a literal path that does
		// not exist. Such patterns contribute no lines at all.
		if len(matches) == 0 {
			p.log.WithField("pattern", pattern).Debug("no matches")
		}
		for _, match := range matches {
			if hiddenFromPattern(pattern, match) {
				continue
			}
			if p.ignore != nil && p.ignore(match) {
				p.log.WithField("path", match).Debug("skipped by .gitignore")
				continue
			}
			paths = append(paths, match)
		}
	}
	return paths
}

// Process checksums every path matched by patterns, one file at a time.
// NotAFile outcomes are dropped. The only error returned is ctx's.
func (p *Processor) Process(ctx context.Context, patterns []string) ([]FileResult, error) {
	var results []FileResult
	for _, path := range p.expandPatterns(patterns) {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		outcome, err := p.engine.Sum(ctx, path)
		if err != nil {
			return results, err
		}
		if outcome.Kind == NotAFile {
			p.log.WithField("path", path).Debug("not a regular file")
			continue
		}

		p.log.WithFields(logrus.Fields{"path": path, "outcome": outcome.Kind}).Info("processed")
		results = append(results, FileResult{
			Path:        path,
			DisplayName: displayName(path, p.opts),
			Outcome:     outcome,
		})
	}
	return results, nil
}

// displayName picks what is printed in front of a result.
func displayName(path string, opts Options) string {
	switch {
	case opts.Verbose > 0:
		return path
	case opts.OmitPath:
		return ""
	default:
		return filepath.Base(path)
	}
}

// hiddenFromPattern reports whether match passes through a dot-prefixed
// element that a shell would not expand pattern to. A wildcard element only
// matches a leading dot when the element itself starts with one.
func hiddenFromPattern(pattern, match string) bool {
	patElems := strings.Split(filepath.ToSlash(filepath.Clean(pattern)), "/")
	matchElems := strings.Split(filepath.ToSlash(filepath.Clean(match)), "/")

	// Glob keeps one match element per pattern element, but a leading "./"
	// is cleaned away on the match side, so line the two up from the end.
	for i, j := len(patElems)-1, len(matchElems)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		elem := patElems[i]
		if !strings.ContainsAny(elem, "*?[") || strings.HasPrefix(elem, ".") {
			continue
		}
		if strings.HasPrefix(matchElems[j], ".") {
			return true
		}
	}
	return false
}

// escapeGlob quotes glob metacharacters so name matches only itself.
func escapeGlob(name string) string {
	// Patterns without metacharacters are matched literally, and
	// filepath.Match has no escape character on Windows.
	if runtime.GOOS == "windows" || !strings.ContainsAny(name, "*?[") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func summarize(results []FileResult) Summary {
	s := Summary{Processed: len(results)}
	for _, r := range results {
		switch r.Outcome.Kind {
		case Hash:
			s.Hashed++
		case PermissionDenied:
			s.Denied++
		}
	}
	return s
}
