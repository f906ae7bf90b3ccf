package pipeline

import (
	"fmt"

	"github.com/nkrn/bigarchiver/internal/fileset"
	"github.com/nkrn/bigarchiver/internal/metadata"
	"github.com/nkrn/bigarchiver/internal/pattern"
)

// Splitter is a sink that forwards bytes into a fileset.Writer, rotating to
// the next chunk file whenever chunkLen bytes have accumulated in the
// current one. All chunks but the last end up exactly chunkLen bytes.
type Splitter struct {
	out          *fileset.Writer
	files        *pattern.FileSet
	chunkLen     int
	leftForChunk int
	nextChunkNo  int
}

// NewSplitter returns a Splitter writing chunkLen-byte files named by
// pattern template through out.
func NewSplitter(out *fileset.Writer, chunkLen int, template string) (*Splitter, error) {
	files, err := pattern.New(template)
	if err != nil {
		return nil, err
	}
	return &Splitter{out: out, files: files, chunkLen: chunkLen, leftForChunk: chunkLen}, nil
}

// Add implements sink.Sink.
func (s *Splitter) Add(data []byte) error {
	left := len(data)
	offs := 0
	for left > 0 {
		if s.leftForChunk == 0 || s.leftForChunk == s.chunkLen {
			if s.nextChunkNo > 0 {
				if err := s.out.CloseCurrent(); err != nil {
					return err
				}
			}
			path, err := s.files.PathFor(s.nextChunkNo)
			if err != nil {
				return err
			}
			if err := s.out.OpenNext(path); err != nil {
				return err
			}
			s.nextChunkNo++
			s.leftForChunk = s.chunkLen
		}
		toWrite := left
		if s.leftForChunk < toWrite {
			toWrite = s.leftForChunk
		}
		if err := s.out.Write(data[offs : offs+toWrite]); err != nil {
			return err
		}
		left -= toWrite
		offs += toWrite
		s.leftForChunk -= toWrite
	}
	return nil
}

// Finish implements sink.Sink: it closes the last open chunk file, if any.
// It does not write the sidecar; call WriteSidecar separately once all
// driver-level statistics (hash, lengths) are known.
func (s *Splitter) Finish() error {
	if s.nextChunkNo > 0 {
		return s.out.CloseCurrent()
	}
	return nil
}

// NrChunks returns the number of chunk files produced so far.
func (s *Splitter) NrChunks() int {
	return s.nextChunkNo
}

// WriteSidecar composes the final sidecar text from stats (with NrChunks
// filled in from this Splitter) and writes it to the file set's sidecar
// path.
func (s *Splitter) WriteSidecar(stats metadata.Stats) error {
	stats.NrChunks = s.nextChunkNo
	path, err := s.files.SidecarPath()
	if err != nil {
		return fmt.Errorf("deriving sidecar path: %w", err)
	}
	return s.out.WriteWhole(path, []byte(stats.Serialize()))
}
