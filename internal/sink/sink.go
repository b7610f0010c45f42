package sink

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type writeFlusher interface {
	Write(p []byte) (int, error)
	Flush() error
}

// File is an output file that is only created by its first non-empty
// write, so runs that never produce a stream leave nothing behind.
//
// Writes may be queued by reference until Flush; callers must flush before
// reusing a buffer they passed to Write.
type File struct {
	path string
	perm os.FileMode

	f       *os.File
	w       writeFlusher
	written int64
	closed  bool
}

func NewFile(path string) *File {
	return &File{
		path: path,
		perm: 0644,
	}
}

func (f *File) Path() string {
	return f.path
}

// Created reports whether the file exists on disk.
func (f *File) Created() bool {
	return f.f != nil
}

func (f *File) Written() int64 {
	return f.written
}

func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errors.Errorf("write %s: file closed", f.path)
	}
	if len(p) == 0 {
		return 0, nil
	}

	if f.f == nil {
		if err := f.create(); err != nil {
			return 0, err
		}
	}

	n, err := f.w.Write(p)
	f.written += int64(n)
	if err != nil {
		return n, errors.Wrapf(err, "write %s", f.path)
	}

	return n, nil
}

func (f *File) Flush() error {
	if f.w == nil {
		return nil
	}

	return errors.Wrapf(f.w.Flush(), "flush %s", f.path)
}

func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.f == nil {
		return nil
	}

	err := f.Flush()
	if cerr := f.f.Close(); cerr != nil && err == nil {
		err = errors.Wrapf(cerr, "close %s", f.path)
	}

	return err
}

func (f *File) create() error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create output dir %s", dir)
		}
	}

	fd, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.perm)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	w, err := newWriter(fd)
	if err != nil {
		fd.Close()
		return errors.Wrapf(err, "create writer for %s", f.path)
	}

	f.f = fd
	f.w = w
	return nil
}
