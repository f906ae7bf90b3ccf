package pipeline

import (
	"io"
	"sync/atomic"

	"github.com/nkrn/bigarchiver/internal/sink"
)

// BufferedReader pulls from an io.Reader source into a large staging
// buffer of storeBufSize bytes, issuing underlying reads of at most
// readBufSize bytes each (readBufSize must be smaller than storeBufSize),
// and emits the staging buffer downstream once no more than readBufSize
// bytes of room are left in it (or once the source is exhausted), so a
// batch carries at most storeBufSize-1 bytes. An optional cancellation flag, when set, stops emission
// cleanly as if the input had ended.
type BufferedReader struct {
	in           io.Reader
	out          sink.Sink
	readBufSize  int
	storeBufSize int
	stop         *atomic.Bool
}

// NewBufferedReader returns a BufferedReader. stop may be nil, meaning the
// read is never cooperatively cancelled.
func NewBufferedReader(in io.Reader, out sink.Sink, readBufSize, storeBufSize int, stop *atomic.Bool) *BufferedReader {
	if readBufSize >= storeBufSize {
		panic("bigarchiver: read_buf_size must be smaller than store_buf_size")
	}
	return &BufferedReader{in: in, out: out, readBufSize: readBufSize, storeBufSize: storeBufSize, stop: stop}
}

// ReadAndWriteAll drives the full pull-and-forward loop, always calling
// Finish on the downstream sink before returning, even on cancellation.
func (b *BufferedReader) ReadAndWriteAll() error {
	buf := make([]byte, b.storeBufSize)
	eof := false

	for !eof {
		offs := 0
		left := b.storeBufSize

		for left > b.readBufSize {
			if b.stop != nil && b.stop.Load() {
				eof = true
				break
			}
			n, err := b.in.Read(buf[offs : offs+b.readBufSize])
			if err != nil && err != io.EOF {
				return err
			}
			if n > 0 {
				offs += n
				left -= n
			} else {
				eof = true
				break
			}
		}

		if err := b.out.Add(buf[:offs]); err != nil {
			return err
		}
	}

	return b.out.Finish()
}
