package fileset

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader opens, reads from, and closes chunk files one at a time. It
// distinguishes a missing file (soft: OpenNext returns false, nil) from any
// other open failure (hard: an error).
type Reader struct {
	current *os.File
	name    string
}

// NewReader returns a Reader with no file currently open.
func NewReader() *Reader {
	return &Reader{}
}

// OpenNext opens path and makes it current. If path does not exist, it
// returns (false, nil) rather than an error; any other failure is hard.
func (r *Reader) OpenNext(path string) (bool, error) {
	if r.current != nil {
		return false, fmt.Errorf("previous file %s was not closed before opening %s", r.name, path)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("could not open file %s: %w", path, err)
	}
	r.current = f
	r.name = path
	return true, nil
}

// Read reads up to len(buf) bytes from the currently open file. A zero
// return with a nil error means end of the current chunk; io.EOF from the
// underlying file is folded into that same (n, nil) shape, since the joiner
// that drives this only cares whether bytesRead was zero.
func (r *Reader) Read(buf []byte) (int, error) {
	if r.current == nil {
		return 0, fmt.Errorf("no current file opened to read from")
	}
	n, err := r.current.Read(buf)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("could not read %d bytes from file %s: %w", len(buf), r.name, err)
	}
	return n, nil
}

// CloseCurrent closes the currently open file.
func (r *Reader) CloseCurrent() error {
	if r.current == nil {
		return fmt.Errorf("no current file opened to close")
	}
	err := r.current.Close()
	r.current = nil
	if err != nil {
		return fmt.Errorf("could not close file %s: %w", r.name, err)
	}
	return nil
}

// ReadWhole reads path in its entirety, used for the metadata sidecar.
func ReadWhole(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read single file %s: %w", path, err)
	}
	return data, nil
}
