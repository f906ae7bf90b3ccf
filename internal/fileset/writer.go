// Package fileset implements sequential, one-file-at-a-time I/O over the
// chunk files named by a pattern.FileSet, plus the single-file read/write
// helpers used for the metadata sidecar.
package fileset

import (
	"fmt"
	"os"
)

// Writer opens, writes to, and closes chunk files one at a time: opening a
// second file before closing the first is an error, as is closing when
// nothing is open.
type Writer struct {
	current *os.File
	name    string
}

// NewWriter returns a Writer with no file currently open.
func NewWriter() *Writer {
	return &Writer{}
}

// OpenNext creates (or truncates) the file at path and makes it current.
func (w *Writer) OpenNext(path string) error {
	if w.current != nil {
		return fmt.Errorf("previous file %s was not closed before opening %s", w.name, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file %s: %w", path, err)
	}
	w.current = f
	w.name = path
	return nil
}

// Write writes data to the currently open file.
func (w *Writer) Write(data []byte) error {
	if w.current == nil {
		return fmt.Errorf("no current file opened to write")
	}
	if _, err := w.current.Write(data); err != nil {
		return fmt.Errorf("could not write %d bytes to file %s: %w", len(data), w.name, err)
	}
	return nil
}

// CloseCurrent closes the currently open file.
func (w *Writer) CloseCurrent() error {
	if w.current == nil {
		return fmt.Errorf("no current file opened to close")
	}
	err := w.current.Close()
	w.current = nil
	if err != nil {
		return fmt.Errorf("could not close file %s: %w", w.name, err)
	}
	return nil
}

// WriteWhole creates path and writes contents to it in one call, used for
// the metadata sidecar.
func (w *Writer) WriteWhole(path string, contents []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create single file %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(contents); err != nil {
		return fmt.Errorf("could not write to single file %s: %w", path, err)
	}
	return nil
}
