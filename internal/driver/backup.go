// Package driver composes the pipeline stages in internal/pipeline into the
// three run modes the CLI exposes: backup, restore, and check.
package driver

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/nkrn/bigarchiver/internal/bigerr"
	"github.com/nkrn/bigarchiver/internal/fileset"
	"github.com/nkrn/bigarchiver/internal/metadata"
	"github.com/nkrn/bigarchiver/internal/pipeline"
	"github.com/nkrn/bigarchiver/internal/sink"
)

// BackupOpts configures a single backup run.
type BackupOpts struct {
	OutTemplate     string
	Pass            string
	Auth            string
	AuthEveryBytes  int
	SplitSizeBytes  int
	CompressLevel   int
	CompressThreads int
	BufSizeBytes    int
	Alg             pipeline.Algorithm
	Cancel          *atomic.Bool // optional, used by bench mode
}

// Backup drives one full backup run from in to the chunk set/sidecar named
// by opts.OutTemplate, returning the written sidecar stats.
func Backup(in io.Reader, opts BackupOpts) (metadata.Stats, error) {
	if err := validateAlgPolicy(opts.Alg, opts.Pass, opts.AuthEveryBytes); err != nil {
		return metadata.Stats{}, err
	}

	hashSeed := uint64(time.Now().Unix())

	fw := fileset.NewWriter()
	splitter, err := pipeline.NewSplitter(fw, opts.SplitSizeBytes, opts.OutTemplate)
	if err != nil {
		return metadata.Stats{}, err
	}

	// Build the chain backwards from the Splitter, per §4.12: with
	// encryption, Splitter <- Encryptor <- FixedFrameWriter <- Compressor
	// <- DataHasher <- BufferedReader <- in; without it, the Encryptor and
	// FixedFrameWriter stages are omitted entirely.
	var compressorOut sink.Sink = splitter
	if opts.Alg != pipeline.AlgNone {
		enc, err := pipeline.NewEncryptor(splitter, opts.Pass, opts.Auth, opts.Alg)
		if err != nil {
			return metadata.Stats{}, err
		}
		compressorOut = pipeline.NewFixedFrameWriter(enc, opts.AuthEveryBytes)
	}

	comp, err := pipeline.NewCompressor(compressorOut, opts.CompressLevel, opts.CompressThreads)
	if err != nil {
		return metadata.Stats{}, err
	}
	hasher := pipeline.NewDataHasher(comp, hashSeed)
	reader := pipeline.NewBufferedReader(in, hasher, opts.BufSizeBytes/8, opts.BufSizeBytes, opts.Cancel)

	if err := reader.ReadAndWriteAll(); err != nil {
		return metadata.Stats{}, err
	}

	// reader.ReadAndWriteAll already drained Finish down the whole chain
	// (BufferedReader -> DataHasher -> Compressor -> [FixedFrameWriter ->
	// Encryptor ->] Splitter), so the Splitter's last chunk is already
	// closed; calling Finish again here would hit CloseCurrent with no
	// open file.
	stats := metadata.Stats{
		InLen:    hasher.Counter(),
		InHash:   hasher.Result(),
		HashSeed: hashSeed,
		XzLen:    int(comp.BytesOut()),
		ChunkLen: opts.SplitSizeBytes,
		Alg:      string(opts.Alg),
		Auth:     opts.Auth,
		AuthLen:  opts.AuthEveryBytes,
	}
	stats.NrChunks = splitter.NrChunks()
	if err := splitter.WriteSidecar(stats); err != nil {
		return metadata.Stats{}, err
	}
	return stats, nil
}

// validateAlgPolicy enforces §7's Policy error class: a password with
// alg=none, a missing password with encryption, or encryption parameters
// given without encryption are all usage errors.
func validateAlgPolicy(alg pipeline.Algorithm, pass string, authEvery int) error {
	switch {
	case alg != pipeline.AlgNone && pass == "":
		return bigerr.NewUsage("password is required when alg is not none")
	case alg == pipeline.AlgNone && pass != "":
		return bigerr.NewUsage("password must not be given when alg is none")
	case alg == pipeline.AlgNone && authEvery != 0:
		return bigerr.NewUsage("encryption parameters must not be given when alg is none")
	}
	return nil
}
