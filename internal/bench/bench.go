// Package bench implements the optional sweep mode described in §5 of the
// design: run backups of synthetic input against a grid of parameter
// combinations, each bounded to a fixed wall-clock duration via the same
// cooperative stop flag the BufferedReader already observes, and report
// throughput sorted fastest first.
package bench

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nkrn/bigarchiver/internal/driver"
	"github.com/nkrn/bigarchiver/internal/pipeline"
)

// Opts configures one bench sweep.
type Opts struct {
	OutDir             string
	Duration           time.Duration
	CompressLevels     []int
	BufSizesBytes      []int
	CompressThreadNums []int
	Algs               []pipeline.Algorithm // empty means just AlgNone
}

// Result is the measured throughput for one parameter combination.
type Result struct {
	CompressLevel   int
	BufSizeBytes    int
	CompressThreads int
	Alg             pipeline.Algorithm
	BytesProcessed  uint64
	Duration        time.Duration
	MiBPerSec       float64
}

// infiniteReader feeds an unbounded stream of deterministic filler bytes;
// the bench worker is stopped by the cancel flag, never by EOF.
type infiniteReader struct {
	counter byte
}

func (r *infiniteReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.counter
		r.counter++
	}
	return len(p), nil
}

// Run sweeps every combination in opts, each for opts.Duration, and returns
// the results sorted by descending throughput.
func Run(opts Opts) ([]Result, error) {
	algs := opts.Algs
	if len(algs) == 0 {
		algs = []pipeline.Algorithm{pipeline.AlgNone}
	}

	var results []Result
	combo := 0
	for _, level := range opts.CompressLevels {
		for _, bufSize := range opts.BufSizesBytes {
			for _, threads := range opts.CompressThreadNums {
				for _, alg := range algs {
					combo++
					res, err := runOne(opts, level, bufSize, threads, alg, combo)
					if err != nil {
						return nil, err
					}
					results = append(results, res)
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].MiBPerSec > results[j].MiBPerSec
	})
	return results, nil
}

func runOne(opts Opts, level, bufSize, threads int, alg pipeline.Algorithm, combo int) (Result, error) {
	var stop atomic.Bool

	pass, auth, authEvery := "", "", 0
	if alg != pipeline.AlgNone {
		pass = "bench-password"
		auth = "bench"
		authEvery = bufSize
	}

	backupOpts := driver.BackupOpts{
		OutTemplate:     filepath.Join(opts.OutDir, fmt.Sprintf("bench-%d-%%%%%%", combo)),
		Pass:            pass,
		Auth:            auth,
		AuthEveryBytes:  authEvery,
		SplitSizeBytes:  bufSize * 4,
		CompressLevel:   level,
		CompressThreads: threads,
		BufSizeBytes:    bufSize,
		Alg:             alg,
		Cancel:          &stop,
	}

	in := &infiniteReader{}

	var wg sync.WaitGroup
	var stats struct {
		bytes uint64
		err   error
	}
	wg.Add(1)
	start := time.Now()
	go func() {
		defer wg.Done()
		s, err := driver.Backup(in, backupOpts)
		stats.bytes = uint64(s.InLen)
		stats.err = err
	}()

	time.Sleep(opts.Duration)
	stop.Store(true)
	wg.Wait()
	elapsed := time.Since(start)

	if stats.err != nil {
		return Result{}, fmt.Errorf("bench combination (level=%d buf=%d threads=%d alg=%s) failed: %w",
			level, bufSize, threads, alg, stats.err)
	}

	mib := float64(stats.bytes) / (1024 * 1024)
	return Result{
		CompressLevel:   level,
		BufSizeBytes:    bufSize,
		CompressThreads: threads,
		Alg:             alg,
		BytesProcessed:  stats.bytes,
		Duration:        elapsed,
		MiBPerSec:       mib / elapsed.Seconds(),
	}, nil
}
