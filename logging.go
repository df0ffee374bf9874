package main

import (
	"fmt"
	"io"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// newLogger builds the diagnostics logger. Results never go through it.
// When logFile is set, entries that pass the level are also appended there.
func newLogger(stderr io.Writer, level, logFile string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	if logFile != "" {
		log.AddHook(lfshook.NewHook(logFile, &logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		}))
	}
	return log, nil
}
