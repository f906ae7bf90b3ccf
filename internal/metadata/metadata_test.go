package metadata

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	s := Stats{
		InLen:    1000,
		InHash:   0xabcdef0123456789,
		HashSeed: 0x1,
		XzLen:    800,
		NrChunks: 3,
		ChunkLen: 400,
		Alg:      "aes128-gcm",
		Auth:     "The Author",
		AuthLen:  100,
	}
	got, err := Parse(s.Serialize())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != s {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestSerializeParseRoundTripWithMisc(t *testing.T) {
	s := Stats{Alg: "none", MiscInfo: "built by test", HasMisc: true}
	got, err := Parse(s.Serialize())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.MiscInfo != s.MiscInfo || !got.HasMisc {
		t.Errorf("misc_info not preserved: got %+v", got)
	}
}

func TestParseRejectsDuplicateKey(t *testing.T) {
	text := "in_len=1\nin_len=2\nin_hash=0\nhash_seed=0\nxz_len=0\nnr_chunks=0\nchunk_len=0\nalg=none\nauth=\nauth_len=0\n"
	if _, err := Parse(text); err == nil {
		t.Errorf("expected duplicate-key error, got none")
	}
}

func TestParseRejectsMissingKey(t *testing.T) {
	text := "in_len=1\nin_hash=0\nhash_seed=0\nxz_len=0\nnr_chunks=0\nchunk_len=0\nalg=none\nauth=\n"
	if _, err := Parse(text); err == nil {
		t.Errorf("expected missing-key error for absent auth_len, got none")
	}
}

func TestParseRejectsEmptyKey(t *testing.T) {
	if _, err := Parse("=123\n"); err == nil {
		t.Errorf("expected error for empty key")
	}
}

func TestParseRejectsBadNumber(t *testing.T) {
	text := "in_len=notanumber\nin_hash=0\nhash_seed=0\nxz_len=0\nnr_chunks=0\nchunk_len=0\nalg=none\nauth=\nauth_len=0\n"
	if _, err := Parse(text); err == nil {
		t.Errorf("expected parse error for non-numeric in_len")
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	if _, err := Parse("this has no equals sign\n"); err == nil {
		t.Errorf("expected error for line without '='")
	}
}
