package pipeline

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	src := make([]byte, 50000)
	rng.Read(src)

	for _, level := range []int{0, 6, 9} {
		for _, threads := range []int{1, 4} {
			compressed := &recorder{}
			comp, err := NewCompressor(compressed, level, threads)
			if err != nil {
				t.Fatalf("[level=%d threads=%d] NewCompressor: %v", level, threads, err)
			}
			offs := 0
			for offs < len(src) {
				n := 1000
				if offs+n > len(src) {
					n = len(src) - offs
				}
				if err := comp.Add(src[offs : offs+n]); err != nil {
					t.Fatalf("[level=%d threads=%d] Add: %v", level, threads, err)
				}
				offs += n
			}
			if err := comp.Finish(); err != nil {
				t.Fatalf("[level=%d threads=%d] Finish: %v", level, threads, err)
			}
			if comp.BytesIn() != int64(len(src)) {
				t.Errorf("[level=%d threads=%d] BytesIn() = %d, want %d", level, threads, comp.BytesIn(), len(src))
			}
			if comp.BytesOut() != int64(compressed.all.Len()) {
				t.Errorf("[level=%d threads=%d] BytesOut() inconsistent with recorded output", level, threads)
			}

			decompressed := &recorder{}
			decomp, err := NewDecompressor(decompressed, threads)
			if err != nil {
				t.Fatalf("[level=%d threads=%d] NewDecompressor: %v", level, threads, err)
			}
			if err := decomp.Add(compressed.all.Bytes()); err != nil {
				t.Fatalf("[level=%d threads=%d] decompress Add: %v", level, threads, err)
			}
			if err := decomp.Finish(); err != nil {
				t.Fatalf("[level=%d threads=%d] decompress Finish: %v", level, threads, err)
			}

			if !bytes.Equal(decompressed.all.Bytes(), src) {
				t.Errorf("[level=%d threads=%d] round trip mismatch: got %d bytes, want %d bytes", level, threads, decompressed.all.Len(), len(src))
			}
		}
	}
}

func TestCompressEmptyInput(t *testing.T) {
	compressed := &recorder{}
	comp, err := NewCompressor(compressed, 6, 1)
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}
	if err := comp.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if comp.BytesIn() != 0 {
		t.Errorf("BytesIn() = %d, want 0", comp.BytesIn())
	}
	if !compressed.finished {
		t.Errorf("downstream Finish was not called")
	}

	decompressed := &recorder{}
	decomp, err := NewDecompressor(decompressed, 1)
	if err != nil {
		t.Fatalf("NewDecompressor: %v", err)
	}
	if err := decomp.Add(compressed.all.Bytes()); err != nil {
		t.Fatalf("decompress Add: %v", err)
	}
	if err := decomp.Finish(); err != nil {
		t.Fatalf("decompress Finish: %v", err)
	}
	if decompressed.all.Len() != 0 {
		t.Errorf("expected empty decompressed output, got %d bytes", decompressed.all.Len())
	}
}

func TestDictCapForLevelMonotonic(t *testing.T) {
	prev := 0
	for level := 0; level <= 9; level++ {
		cap := dictCapForLevel(level)
		if cap < prev {
			t.Errorf("dictCapForLevel(%d) = %d, smaller than level %d's %d (should be non-decreasing)", level, cap, level-1, prev)
		}
		prev = cap
	}
}

func TestDictCapForLevelClampsOutOfRange(t *testing.T) {
	if dictCapForLevel(-5) != dictCapForLevel(0) {
		t.Errorf("negative level should clamp to level 0's dict cap")
	}
	if dictCapForLevel(99) != dictCapForLevel(9) {
		t.Errorf("out-of-range high level should clamp to level 9's dict cap")
	}
}
