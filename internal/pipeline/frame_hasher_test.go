package pipeline

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/nkrn/bigarchiver/internal/sink"
)

// recorder is a test sink.Sink that records each Add call's length and the
// concatenation of all bytes passed to it.
type recorder struct {
	calls    []int
	all      bytes.Buffer
	finished bool
}

func (r *recorder) Add(p []byte) error {
	r.calls = append(r.calls, len(p))
	r.all.Write(p)
	return nil
}

func (r *recorder) Finish() error {
	r.finished = true
	return nil
}

func TestFixedFrameWriterFraming(t *testing.T) {
	src := make([]byte, 0)
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 997; n++ {
		src = append(src, byte(rng.Intn(256)))
	}

	rec := &recorder{}
	w := NewFixedFrameWriter(rec, 100)

	// Feed in irregular chunks so framing logic is exercised across Add
	// boundaries, not just aligned ones.
	offs := 0
	for offs < len(src) {
		n := 1 + rng.Intn(37)
		if offs+n > len(src) {
			n = len(src) - offs
		}
		if err := w.Add(src[offs : offs+n]); err != nil {
			t.Fatalf("Add: %v", err)
		}
		offs += n
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !bytes.Equal(rec.all.Bytes(), src) {
		t.Fatalf("concatenation mismatch: framing lost or reordered bytes")
	}
	for i, n := range rec.calls {
		if i < len(rec.calls)-1 && n != 100 {
			t.Errorf("call %d had length %d, want exactly 100 (all but the last must be full frames)", i, n)
		}
	}
	if last := rec.calls[len(rec.calls)-1]; last == 0 || last > 100 {
		t.Errorf("last call had length %d, want in (0, 100]", last)
	}
	if !rec.finished {
		t.Errorf("downstream Finish was not called")
	}
}

func TestFixedFrameWriterExactMultiple(t *testing.T) {
	rec := &recorder{}
	w := NewFixedFrameWriter(rec, 10)
	if err := w.Add(bytes.Repeat([]byte{7}, 30)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(rec.calls) != 3 {
		t.Fatalf("expected exactly 3 frames for a 30-byte input at frame size 10, got %d", len(rec.calls))
	}
	for _, n := range rec.calls {
		if n != 10 {
			t.Errorf("frame length = %d, want 10", n)
		}
	}
}

func TestDataHasherCounterAndForwarding(t *testing.T) {
	rec := &recorder{}
	h := NewDataHasher(rec, 42)
	if err := h.Add([]byte("hello ")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Add([]byte("world")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if h.Counter() != 11 {
		t.Errorf("Counter() = %d, want 11", h.Counter())
	}
	if rec.all.String() != "hello world" {
		t.Errorf("forwarded bytes = %q, want %q", rec.all.String(), "hello world")
	}
	if !rec.finished {
		t.Errorf("downstream Finish was not called")
	}
}

func TestDataHasherSameSeedSameInputSameResult(t *testing.T) {
	h1 := NewDataHasher(nil, 7)
	h2 := NewDataHasher(nil, 7)
	for _, h := range []*DataHasher{h1, h2} {
		if err := h.Add([]byte("deterministic")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if h1.Result() != h2.Result() {
		t.Errorf("same seed and input produced different hashes: %x vs %x", h1.Result(), h2.Result())
	}
}

func TestDataHasherDifferentSeedDifferentResult(t *testing.T) {
	h1 := NewDataHasher(nil, 1)
	h2 := NewDataHasher(nil, 2)
	for _, h := range []*DataHasher{h1, h2} {
		if err := h.Add([]byte("same input")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if h1.Result() == h2.Result() {
		t.Errorf("different seeds produced the same hash: %x", h1.Result())
	}
}

func TestDataHasherNilOutDoesNotPanic(t *testing.T) {
	h := NewDataHasher(nil, 0)
	if err := h.Add([]byte("x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}
