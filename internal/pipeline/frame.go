package pipeline

import (
	"github.com/nkrn/bigarchiver/internal/sink"
)

// FixedFrameWriter re-frames an arbitrary byte stream into records of
// exactly frameSize bytes, buffering internally; Finish flushes whatever
// short remainder is left (0 < r < frameSize) as a final short frame. It
// exists so that downstream AEAD sealing gets one complete record per Add
// call.
type FixedFrameWriter struct {
	out       sink.Sink
	frameSize int
	buf       []byte
}

// NewFixedFrameWriter returns a FixedFrameWriter emitting frameSize-byte
// records to out.
func NewFixedFrameWriter(out sink.Sink, frameSize int) *FixedFrameWriter {
	return &FixedFrameWriter{out: out, frameSize: frameSize, buf: make([]byte, 0, frameSize)}
}

// Add implements sink.Sink.
func (w *FixedFrameWriter) Add(data []byte) error {
	for len(data) > 0 {
		room := w.frameSize - len(w.buf)
		n := len(data)
		if n > room {
			n = room
		}
		w.buf = append(w.buf, data[:n]...)
		data = data[n:]
		if len(w.buf) == w.frameSize {
			if err := w.out.Add(w.buf); err != nil {
				return err
			}
			w.buf = w.buf[:0]
		}
	}
	return nil
}

// Finish implements sink.Sink: it flushes any buffered short remainder as a
// final frame before propagating Finish downstream.
func (w *FixedFrameWriter) Finish() error {
	if len(w.buf) > 0 {
		if err := w.out.Add(w.buf); err != nil {
			return err
		}
		w.buf = w.buf[:0]
	}
	return w.out.Finish()
}
