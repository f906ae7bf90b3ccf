package pipeline

import (
	"github.com/zeebo/xxh3"

	"github.com/nkrn/bigarchiver/internal/sink"
)

// DataHasher is a pass-through sink: every byte that flows through it
// updates a seeded 128-bit non-cryptographic hash (the low 64 bits of which
// become the sidecar's in_hash) and a running byte counter (in_len), while
// forwarding unchanged to an optional downstream sink.
type DataHasher struct {
	out     sink.Sink // may be nil, in which case bytes are only hashed/counted
	hasher  *xxh3.Hasher
	counter int
}

// NewDataHasher returns a DataHasher seeded with seed, forwarding to out.
// out may be nil for a hash-only pass. (CheckDriver's check-only mode
// passes sink.Null rather than nil.)
func NewDataHasher(out sink.Sink, seed uint64) *DataHasher {
	return &DataHasher{out: out, hasher: xxh3.NewSeed(seed)}
}

// Add implements sink.Sink.
func (h *DataHasher) Add(data []byte) error {
	h.hasher.Write(data)
	h.counter += len(data)
	if h.out != nil {
		return h.out.Add(data)
	}
	return nil
}

// Finish implements sink.Sink.
func (h *DataHasher) Finish() error {
	if h.out != nil {
		return h.out.Finish()
	}
	return nil
}

// Result returns the low 64 bits of the 128-bit digest accumulated so far.
func (h *DataHasher) Result() uint64 {
	return h.hasher.Sum128().Lo
}

// Counter returns the total number of bytes seen so far.
func (h *DataHasher) Counter() int {
	return h.counter
}
