package pipeline

import (
	"fmt"

	"github.com/nkrn/bigarchiver/internal/fileset"
	"github.com/nkrn/bigarchiver/internal/pattern"
	"github.com/nkrn/bigarchiver/internal/sink"
)

// Joiner reads chunk files in order through a fileset.Reader and forwards
// their concatenated bytes into a downstream sink. It stops cleanly on the
// first missing chunk after chunk 0; a missing chunk 0 is a hard error.
type Joiner struct {
	in          *fileset.Reader
	out         sink.Sink
	files       *pattern.FileSet
	maxReadBuf  int
	nextChunkNo int
}

// NewJoinerFromPattern builds a Joiner over the given template.
func NewJoinerFromPattern(in *fileset.Reader, out sink.Sink, template string, maxReadBuf int) (*Joiner, error) {
	files, err := pattern.New(template)
	if err != nil {
		return nil, err
	}
	return &Joiner{in: in, out: out, files: files, maxReadBuf: maxReadBuf}, nil
}

// NewJoinerFromSidecar builds a Joiner over the template recovered from a
// sidecar path.
func NewJoinerFromSidecar(in *fileset.Reader, out sink.Sink, sidecarPath string, maxReadBuf int) (*Joiner, error) {
	files, err := pattern.FromSidecarPath(sidecarPath)
	if err != nil {
		return nil, err
	}
	return &Joiner{in: in, out: out, files: files, maxReadBuf: maxReadBuf}, nil
}

// ReadAndWriteAll drives the whole join: open chunk 0, 1, 2, ... in order,
// forwarding nonempty reads downstream, until a chunk is missing (after the
// first), then finishes the downstream sink.
func (j *Joiner) ReadAndWriteAll() error {
	buf := make([]byte, j.maxReadBuf)

	for {
		path, err := j.files.PathFor(j.nextChunkNo)
		if err != nil {
			return err
		}
		opened, err := j.in.OpenNext(path)
		if err != nil {
			return fmt.Errorf("could not read chunk #%d for pattern: %w", j.nextChunkNo, err)
		}
		if !opened {
			if j.nextChunkNo == 0 {
				return fmt.Errorf("first chunk not found")
			}
			break
		}
		j.nextChunkNo++

		for {
			n, err := j.in.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			if err := j.out.Add(buf[:n]); err != nil {
				return fmt.Errorf("target write error of %d bytes: %w", n, err)
			}
		}
		if err := j.in.CloseCurrent(); err != nil {
			return err
		}
	}

	if err := j.out.Finish(); err != nil {
		return fmt.Errorf("finalization error: %w", err)
	}
	return nil
}
