package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nkrn/bigarchiver/internal/bench"
	"github.com/nkrn/bigarchiver/internal/bigerr"
	"github.com/nkrn/bigarchiver/internal/driver"
	"github.com/nkrn/bigarchiver/internal/logger"
	_ "github.com/nkrn/bigarchiver/internal/mlockall"
	"github.com/nkrn/bigarchiver/internal/pattern"
	"github.com/nkrn/bigarchiver/internal/pipeline"
	"github.com/nkrn/bigarchiver/internal/sink"
)

const mebibyte = 1024 * 1024

const usage = `Usage:
    bigarchiver backup --out-template T --pass P --auth A --auth-every Mmb --split-size Smb --compress-level L [--compress-threads N] --buf-size Bmb [--no-check] [--alg {none|aes128-gcm|chacha20-poly1305}]
    bigarchiver restore --config C.cfg --pass P [--decompress-threads N] --buf-size Bmb [--check-free-space PATH] [--no-check]
    bigarchiver check --config C.cfg --pass P [--decompress-threads N] --buf-size Bmb
    bigarchiver bench --out-dir D --duration S --compress-levels L1,L2,... --buf-sizes B1,B2,... --compress-threads-nums N1,... [--algs ...]

backup reads standard input and produces chunk files under --out-template
plus a sidecar; restore reads a sidecar and writes plaintext to standard
output; check verifies a sidecar's chunks without writing output; bench
sweeps parameter combinations and reports throughput.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "backup":
		err = runBackup(os.Args[2:])
	case "restore":
		err = runRestore(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "bench":
		err = runBench(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprintln(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Global.Errorf("%v", err)
		if bigerr.IsUsage(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseAlg(s string) (pipeline.Algorithm, error) {
	switch pipeline.Algorithm(s) {
	case pipeline.AlgNone, pipeline.AlgAES128GCM, pipeline.AlgChaCha20Poly1305:
		return pipeline.Algorithm(s), nil
	default:
		return "", bigerr.NewUsage("unknown algorithm %q", s)
	}
}

func runBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	outTemplate := fs.String("out-template", "", "chunk filename template, containing a run of '%'")
	pass := fs.String("pass", "", "encryption password")
	auth := fs.String("auth", "", "authenticated associated data")
	authEveryMb := fs.Float64("auth-every", 0, "AEAD record size in mebibytes")
	splitSizeMb := fs.Float64("split-size", 64, "chunk size in mebibytes")
	compressLevel := fs.Int("compress-level", 6, "xz compression level 0-9")
	compressThreads := fs.Int("compress-threads", 1, "compression worker pool depth")
	bufSizeMb := fs.Float64("buf-size", 8, "read staging buffer size in mebibytes")
	noCheck := fs.Bool("no-check", false, "skip the post-backup verification pass")
	algFlag := fs.String("alg", "none", "encryption algorithm: none, aes128-gcm, chacha20-poly1305")
	if err := fs.Parse(args); err != nil {
		return bigerr.WrapUsage(err)
	}
	if *outTemplate == "" {
		return bigerr.NewUsage("--out-template is required")
	}

	alg, err := parseAlg(*algFlag)
	if err != nil {
		return err
	}

	opts := driver.BackupOpts{
		OutTemplate:     *outTemplate,
		Pass:            *pass,
		Auth:            *auth,
		AuthEveryBytes:  int(*authEveryMb * mebibyte),
		SplitSizeBytes:  int(*splitSizeMb * mebibyte),
		CompressLevel:   *compressLevel,
		CompressThreads: *compressThreads,
		BufSizeBytes:    int(*bufSizeMb * mebibyte),
		Alg:             alg,
	}

	stats, err := driver.Backup(os.Stdin, opts)
	if err != nil {
		return err
	}
	logger.Global.Printf("wrote %d chunk(s), %d input bytes, %d compressed bytes", stats.NrChunks, stats.InLen, stats.XzLen)

	if !*noCheck {
		cfgPath, err := pattern.CfgPathFromTemplate(opts.OutTemplate)
		if err != nil {
			return err
		}
		if _, err := driver.Check(driver.CheckOpts{
			ConfigPath:        cfgPath,
			Pass:              opts.Pass,
			DecompressThreads: opts.CompressThreads,
			BufSizeBytes:      opts.BufSizeBytes,
		}); err != nil {
			return fmt.Errorf("post-backup verification failed: %w", err)
		}
		logger.Global.Printf("verification passed")
	}
	return nil
}

func runRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	configPath := fs.String("config", "", "sidecar path")
	pass := fs.String("pass", "", "decryption password")
	decompressThreads := fs.Int("decompress-threads", 1, "decompression worker pool depth")
	bufSizeMb := fs.Float64("buf-size", 8, "chunk read buffer size in mebibytes")
	checkFreeSpace := fs.String("check-free-space", "", "path to check for available bytes before restoring")
	noCheck := fs.Bool("no-check", false, "skip pre-restore verification")
	if err := fs.Parse(args); err != nil {
		return bigerr.WrapUsage(err)
	}
	if *configPath == "" {
		return bigerr.NewUsage("--config is required")
	}

	if !*noCheck {
		if _, err := driver.Check(driver.CheckOpts{
			ConfigPath:        *configPath,
			Pass:              *pass,
			DecompressThreads: *decompressThreads,
			BufSizeBytes:      int(*bufSizeMb * mebibyte),
			CheckFreeSpace:    *checkFreeSpace,
		}); err != nil {
			return fmt.Errorf("pre-restore verification failed: %w", err)
		}
	}

	_, err := driver.Check(driver.CheckOpts{
		ConfigPath:        *configPath,
		Pass:              *pass,
		DecompressThreads: *decompressThreads,
		BufSizeBytes:      int(*bufSizeMb * mebibyte),
		CheckFreeSpace:    *checkFreeSpace,
		Dest:              sink.Writer{W: os.Stdout},
	})
	return err
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "sidecar path")
	pass := fs.String("pass", "", "decryption password")
	decompressThreads := fs.Int("decompress-threads", 1, "decompression worker pool depth")
	bufSizeMb := fs.Float64("buf-size", 8, "chunk read buffer size in mebibytes")
	if err := fs.Parse(args); err != nil {
		return bigerr.WrapUsage(err)
	}
	if *configPath == "" {
		return bigerr.NewUsage("--config is required")
	}

	_, err := driver.Check(driver.CheckOpts{
		ConfigPath:        *configPath,
		Pass:              *pass,
		DecompressThreads: *decompressThreads,
		BufSizeBytes:      int(*bufSizeMb * mebibyte),
	})
	if err == nil {
		logger.Global.Printf("check passed")
	}
	return err
}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	outDir := fs.String("out-dir", "", "directory to write scratch chunk files into")
	durationSec := fs.Int("duration", 5, "wall-clock seconds per combination")
	levelsFlag := fs.String("compress-levels", "6", "comma-separated xz compression levels")
	bufSizesFlag := fs.String("buf-sizes", "8", "comma-separated buffer sizes in mebibytes")
	threadsFlag := fs.String("compress-threads-nums", "1", "comma-separated worker pool depths")
	algsFlag := fs.String("algs", "none", "comma-separated algorithms")
	if err := fs.Parse(args); err != nil {
		return bigerr.WrapUsage(err)
	}
	if *outDir == "" {
		return bigerr.NewUsage("--out-dir is required")
	}

	levels, err := parseIntList(*levelsFlag)
	if err != nil {
		return err
	}
	bufSizesMb, err := parseIntList(*bufSizesFlag)
	if err != nil {
		return err
	}
	bufSizes := make([]int, len(bufSizesMb))
	for i, v := range bufSizesMb {
		bufSizes[i] = v * mebibyte
	}
	threads, err := parseIntList(*threadsFlag)
	if err != nil {
		return err
	}
	algs, err := parseAlgList(*algsFlag)
	if err != nil {
		return err
	}

	results, err := bench.Run(bench.Opts{
		OutDir:             *outDir,
		Duration:           time.Duration(*durationSec) * time.Second,
		CompressLevels:     levels,
		BufSizesBytes:      bufSizes,
		CompressThreadNums: threads,
		Algs:               algs,
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("level=%d buf=%dMiB threads=%d alg=%s: %.2f MiB/s\n",
			r.CompressLevel, r.BufSizeBytes/mebibyte, r.CompressThreads, r.Alg, r.MiBPerSec)
	}
	return nil
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, bigerr.NewUsage("invalid integer %q in list %q", p, s)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseAlgList(s string) ([]pipeline.Algorithm, error) {
	parts := strings.Split(s, ",")
	out := make([]pipeline.Algorithm, 0, len(parts))
	for _, p := range parts {
		alg, err := parseAlg(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}
