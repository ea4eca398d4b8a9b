package aqreport

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// OutputSink persists the final document under a target name.
type OutputSink interface {
	Write(ctx context.Context, target string, document string) error
}

// FileSink writes documents as UTF-8 files below a directory.
// Files are written to a temporary name first and renamed into place, so a
// failed write never leaves a partial document behind.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink writing into dir ("" means the working directory).
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path returns the file path a target is written to.
func (s *FileSink) Path(target string) string {
	if target == "" {
		target = DefaultOutputFile
	}
	if filepath.IsAbs(target) || s.dir == "" {
		return target
	}
	return filepath.Join(s.dir, target)
}

// Write stores document at the target path.
func (s *FileSink) Write(ctx context.Context, target string, document string) error {
	path := s.Path(target)
	if err := ctx.Err(); err != nil {
		return NewOutputSinkError(path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return NewOutputSinkError(path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return NewOutputSinkError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := io.WriteString(tmp, document); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewOutputSinkError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewOutputSinkError(path, err)
	}
	if err := os.Chmod(tmpName, FilesystemFilePermissions); err != nil {
		os.Remove(tmpName)
		return NewOutputSinkError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewOutputSinkError(path, err)
	}
	return nil
}

// WriterSink writes documents to an io.Writer, ignoring the target name.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink over w (e.g. os.Stdout).
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write writes document to the underlying writer.
func (s *WriterSink) Write(ctx context.Context, target string, document string) error {
	if err := ctx.Err(); err != nil {
		return NewOutputSinkError(target, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, document); err != nil {
		return NewOutputSinkError(target, err)
	}
	return nil
}
