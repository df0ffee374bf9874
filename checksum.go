package main

import (
	"context"
	"errors"
	"hash/crc32"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// chunkSize is the read size used when streaming a file into the accumulator.
const chunkSize = 65536

// Engine computes CRC32 checksums of files on a filesystem.
type Engine struct {
	fs  afero.Fs
	log logrus.FieldLogger
}

// NewEngine returns an Engine reading from fs.
func NewEngine(fs afero.Fs, log logrus.FieldLogger) *Engine {
	return &Engine{fs: fs, log: log}
}

// Sum classifies path and, for a readable regular file, returns its IEEE CRC32.
// The returned error is non-nil only when ctx is cancelled mid-read.
func (e *Engine) Sum(ctx context.Context, path string) (Outcome, error) {
	// Stat follows symlinks, so a link to a regular file is hashed and a
	// dangling one is skipped like any other missing path.
	info, err := e.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Outcome{Kind: NotAFile}, nil
	}

	file, err := e.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Outcome{Kind: PermissionDenied}, nil
		}
		// The file passed stat but was removed or replaced before open. It
		// is treated as if the glob had never matched it.
		return Outcome{Kind: NotAFile}, nil
	}
	defer file.Close()

	sum, err := sumReader(ctx, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		// The file opened but could not be read to the end (an I/O error or
		// a lock on some platforms). The user gets the same denied line as
		// for an unreadable file; the cause only goes to the log.
		e.log.WithError(err).WithField("path", path).Warn("read failed")
		return Outcome{Kind: PermissionDenied}, nil
	}
	return Outcome{Kind: Hash, Sum: sum}, nil
}

// sumReader feeds r into a CRC32 accumulator seeded at 0, chunkSize bytes at a time.
func sumReader(ctx context.Context, r io.Reader) (uint32, error) {
	buf := make([]byte, chunkSize)
	var crc uint32
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			crc = crc32.Update(crc, crc32.IEEETable, buf[:n])
		}
		if err == io.EOF {
			return crc, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
