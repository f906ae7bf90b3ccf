package driver

import (
	"github.com/nkrn/bigarchiver/internal/bigerr"
	"github.com/nkrn/bigarchiver/internal/fileset"
	"github.com/nkrn/bigarchiver/internal/freespace"
	"github.com/nkrn/bigarchiver/internal/metadata"
	"github.com/nkrn/bigarchiver/internal/pipeline"
	"github.com/nkrn/bigarchiver/internal/sink"
)

// CheckOpts configures a single restore-or-check run.
type CheckOpts struct {
	ConfigPath        string
	Pass              string
	DecompressThreads int
	BufSizeBytes      int
	CheckFreeSpace    string // empty means skip the capacity check
	// Dest receives the restored plaintext; nil means discard it (check-only).
	Dest sink.Sink
}

// Check parses the sidecar at opts.ConfigPath, optionally checks free space,
// drives the inverse pipeline (joiner -> decryptor -> decompressor ->
// hasher -> opts.Dest or discard), and verifies the recomputed hash against
// the sidecar's recorded in_hash.
func Check(opts CheckOpts) (metadata.Stats, error) {
	raw, err := fileset.ReadWhole(opts.ConfigPath)
	if err != nil {
		return metadata.Stats{}, err
	}
	stats, err := metadata.Parse(string(raw))
	if err != nil {
		return metadata.Stats{}, err
	}

	alg := pipeline.Algorithm(stats.Alg)
	switch {
	case alg != pipeline.AlgNone && opts.Pass == "":
		return metadata.Stats{}, bigerr.NewUsage("password is required to restore an encrypted archive")
	case alg == pipeline.AlgNone && opts.Pass != "":
		return metadata.Stats{}, bigerr.NewUsage("password must not be given to restore an unencrypted archive")
	}

	if opts.CheckFreeSpace != "" {
		avail, err := freespace.Available(opts.CheckFreeSpace)
		if err != nil {
			return metadata.Stats{}, err
		}
		if avail < uint64(stats.InLen) {
			return metadata.Stats{}, bigerr.NewCapacity(
				"not enough free space at %s: need %d bytes, have %d", opts.CheckFreeSpace, stats.InLen, avail)
		}
	}

	dest := opts.Dest
	if dest == nil {
		dest = sink.Null{}
	}
	hasher := pipeline.NewDataHasher(dest, stats.HashSeed)

	var decompOut sink.Sink = hasher
	decomp, err := pipeline.NewDecompressor(decompOut, opts.DecompressThreads)
	if err != nil {
		return metadata.Stats{}, err
	}

	var joinerIn sink.Sink = decomp
	if alg != pipeline.AlgNone {
		dec, err := pipeline.NewDecryptor(decomp, opts.Pass, stats.Auth, alg)
		if err != nil {
			return metadata.Stats{}, err
		}
		joinerIn = pipeline.NewFixedFrameWriter(dec, stats.AuthLen+aeadTagLen(alg))
	}

	fr := fileset.NewReader()
	joiner, err := pipeline.NewJoinerFromSidecar(fr, joinerIn, opts.ConfigPath, opts.BufSizeBytes)
	if err != nil {
		return metadata.Stats{}, err
	}
	if err := joiner.ReadAndWriteAll(); err != nil {
		return metadata.Stats{}, err
	}

	if hasher.Result() != stats.InHash {
		return metadata.Stats{}, bigerr.NewIntegrity("hash verification error")
	}
	return stats, nil
}

// aeadTagLen returns the AEAD tag overhead appended to each sealed record:
// 16 bytes for both supported algorithms.
func aeadTagLen(alg pipeline.Algorithm) int {
	return 16
}
