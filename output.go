package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	notFoundLine     = "File(s) not found..."
	permissionDenied = "Permission denied"
)

// clipboardWriter is swapped out in tests.
var clipboardWriter = clipboard.WriteAll

// renderResult formats one record line.
func renderResult(r FileResult) string {
	if r.Outcome.Kind == PermissionDenied {
		return r.DisplayName + " " + permissionDenied
	}
	return fmt.Sprintf("%s %08X", r.DisplayName, r.Outcome.Sum)
}

// renderBatch turns results into output lines, adding the summary line in
// verbose mode or the not-found line when nothing was kept.
func renderBatch(results []FileResult, opts Options) []string {
	if len(results) == 0 {
		return []string{notFoundLine}
	}

	lines := make([]string, 0, len(results)+1)
	for _, r := range results {
		lines = append(lines, renderResult(r))
	}
	if opts.Verbose > 0 {
		lines = append(lines, summaryLine(summarize(results)))
	}
	return lines
}

func summaryLine(s Summary) string {
	plural := "s"
	if s.Processed == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d file%s processed.", s.Processed, plural)
}

// outputTarget says where the rendered lines go.
type outputTarget struct {
	File      string
	Clipboard bool
}

// writeOutput sends lines to the file, the clipboard, or stdout, in that order
// of preference. A clipboard failure falls back to stdout.
func writeOutput(fs afero.Fs, stdout io.Writer, lines []string, target outputTarget, log logrus.FieldLogger) error {
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	finalOutput := builder.String()

	switch {
	case target.File != "":
		if err := afero.WriteFile(fs, target.File, []byte(finalOutput), 0644); err != nil {
			return fmt.Errorf("writing to file %s: %w", target.File, err)
		}
		log.WithField("file", target.File).Info("output saved")
	case target.Clipboard:
		if err := clipboardWriter(finalOutput); err != nil {
			// No clipboard utility on headless boxes and over ssh; the
			// results still go to stdout.
			log.WithError(err).Warn("clipboard unavailable, printing instead")
			_, err = io.WriteString(stdout, finalOutput)
			return err
		}
		log.Info("output copied to clipboard")
	default:
		_, err := io.WriteString(stdout, finalOutput)
		return err
	}
	return nil
}
