// Package sink defines the capability every stage of the archiver pipeline is
// built against: something bytes can be pushed into, and that can be told
// there is no more to push.
package sink

import "io"

// A Sink accepts a stream of bytes in successive calls to Add, and is told
// the stream is over by a call to Finish. Implementations must either
// consume everything passed to Add (buffering internally if needed) or
// return an error; once Finish has returned successfully, no further Add
// call is permitted.
type Sink interface {
	Add(p []byte) error
	Finish() error
}

// Null discards everything written to it. Used by CheckDriver when running
// in check-only mode, where the restored plaintext is hashed but never
// delivered anywhere.
type Null struct{}

func (Null) Add(p []byte) error { return nil }
func (Null) Finish() error      { return nil }

// Writer adapts an io.Writer to the Sink capability. Finish is a no-op; the
// caller owns closing the underlying writer.
type Writer struct {
	W io.Writer
}

func (s Writer) Add(p []byte) error {
	_, err := s.W.Write(p)
	return err
}

func (s Writer) Finish() error { return nil }
