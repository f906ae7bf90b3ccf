package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/ulikunitz/xz"

	"github.com/nkrn/bigarchiver/internal/sink"
)

// sinkWriter adapts a sink.Sink to io.Writer, the shape the xz package
// wants to write into, while counting bytes passed through.
type sinkWriter struct {
	out   sink.Sink
	count int64
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	if err := w.out.Add(p); err != nil {
		return 0, err
	}
	w.count += int64(len(p))
	return len(p), nil
}

// dictCapForLevel maps the LZMA/XZ "compression level" knob (0-9, as
// exposed by the xz command line and expected by callers of this package)
// onto ulikunitz/xz's DictCap-based configuration, since that library has
// no notion of numbered presets of its own.
func dictCapForLevel(level int) int {
	// Mirrors the approximate dictionary sizes of the reference xz presets
	// -0 through -9 (256 KiB through 64 MiB), clamped to the levels this
	// library accepts.
	caps := []int{
		1 << 18, // 0: 256 KiB
		1 << 20, // 1: 1 MiB
		1 << 21, // 2: 2 MiB
		1 << 22, // 3: 4 MiB
		1 << 22, // 4: 4 MiB
		1 << 23, // 5: 8 MiB
		1 << 23, // 6: 8 MiB
		1 << 24, // 7: 16 MiB
		1 << 25, // 8: 32 MiB
		1 << 26, // 9: 64 MiB
	}
	if level < 0 {
		level = 0
	}
	if level >= len(caps) {
		level = len(caps) - 1
	}
	return caps[level]
}

// decoderDictCap bounds decoder memory to stay comfortably under the
// ~1 GiB memory limit required by spec: the reader never needs a dictionary
// bigger than the largest one the encoder side could have used.
const decoderDictCap = 1 << 26 // 64 MiB, matches the largest encoder preset

// workUnit is one buffer queued to the Compressor's codec worker goroutine,
// alongside the channel it must signal completion on.
type workUnit struct {
	data []byte
	done chan error
}

// codecPool is a small bounded pipeline: one dedicated goroutine drains
// jobs and feeds them sequentially into a single stateful codec stream (the
// xz format is not safe for concurrent writers). submit waits for its job
// to finish before returning, so at most one job is in flight and the
// caller never overlaps with the codec work; depth, taken from the
// configured thread count, only sets the job channel's capacity. This is
// the "worker pool" the Compressor exposes behind the ordinary synchronous
// Sink contract.
type codecPool struct {
	jobs chan workUnit
	wg   sync.WaitGroup
}

func newCodecPool(depth int, work func([]byte) error) *codecPool {
	if depth < 1 {
		depth = 1
	}
	p := &codecPool{jobs: make(chan workUnit, depth)}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for u := range p.jobs {
			err := work(u.data)
			u.done <- err
		}
	}()
	return p
}

func (p *codecPool) submit(data []byte) error {
	done := make(chan error, 1)
	// copy, since the caller's buffer may be reused before the worker gets to it
	owned := make([]byte, len(data))
	copy(owned, data)
	p.jobs <- workUnit{data: owned, done: done}
	return <-done
}

func (p *codecPool) close() {
	close(p.jobs)
	p.wg.Wait()
}

// Compressor streams plaintext through an XZ encoder, tracking bytes in and
// bytes out; it is not restartable.
type Compressor struct {
	writer  *sinkWriter
	enc     *xz.Writer
	pool    *codecPool
	bytesIn int64
}

// NewCompressor returns a Compressor writing level-compressed XZ data to
// out, using nrThreads as the worker pool's queue depth. Encoding runs on
// one dedicated goroutine whatever nrThreads is, and each Add waits for it.
func NewCompressor(out sink.Sink, level, nrThreads int) (*Compressor, error) {
	w := &sinkWriter{out: out}
	cfg := xz.WriterConfig{
		DictCap: dictCapForLevel(level),
	}
	enc, err := cfg.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("could not create LZMA encoder: %w", err)
	}
	c := &Compressor{writer: w, enc: enc}
	c.pool = newCodecPool(nrThreads, func(data []byte) error {
		if _, err := enc.Write(data); err != nil {
			return fmt.Errorf("compressor write error: %w", err)
		}
		c.bytesIn += int64(len(data))
		return nil
	})
	return c, nil
}

// Add implements sink.Sink.
func (c *Compressor) Add(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return c.pool.submit(data)
}

// Finish implements sink.Sink: it drains the worker pool, drives the
// encoder to end-of-stream, and finishes the downstream sink.
func (c *Compressor) Finish() error {
	c.pool.close()
	if err := c.enc.Close(); err != nil {
		return fmt.Errorf("compressor finalization error: %w", err)
	}
	return c.writer.out.Finish()
}

// BytesIn returns the total plaintext bytes compressed.
func (c *Compressor) BytesIn() int64 { return c.bytesIn }

// BytesOut returns the total compressed bytes written downstream
// (xz_len in the sidecar).
func (c *Compressor) BytesOut() int64 { return c.writer.count }

// Decompressor streams compressed XZ data through a decoder, forwarding
// recovered plaintext to out. Decoding memory is bounded by decoderDictCap.
type Decompressor struct {
	pw   *io.PipeWriter
	out  sink.Sink
	done chan error
}

// NewDecompressor returns a Decompressor forwarding plaintext to out.
// nrThreads is accepted for symmetry with Compressor's interface (the
// thread count is specified only at the external boundary by the
// compression-library collaborator); decoding here runs on one dedicated
// goroutine reading from the XZ stream as fast as compressed data arrives.
func NewDecompressor(out sink.Sink, nrThreads int) (*Decompressor, error) {
	pr, pw := io.Pipe()
	d := &Decompressor{pw: pw, out: out, done: make(chan error, 1)}

	cfg := xz.ReaderConfig{DictCap: decoderDictCap}
	go func() {
		dec, err := cfg.NewReader(pr)
		if err != nil {
			pr.CloseWithError(err)
			d.done <- fmt.Errorf("could not create LZMA decoder: %w", err)
			return
		}
		buf := make([]byte, 32*1024)
		for {
			n, err := dec.Read(buf)
			if n > 0 {
				if addErr := out.Add(buf[:n]); addErr != nil {
					pr.CloseWithError(addErr)
					d.done <- addErr
					return
				}
			}
			if err == io.EOF {
				d.done <- nil
				return
			}
			if err != nil {
				pr.CloseWithError(err)
				d.done <- fmt.Errorf("decompressor read error: %w", err)
				return
			}
		}
	}()
	return d, nil
}

// Add implements sink.Sink.
func (d *Decompressor) Add(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := d.pw.Write(data)
	if err != nil {
		return fmt.Errorf("write all error: %w", err)
	}
	return nil
}

// Finish implements sink.Sink: it signals end-of-stream to the decoder,
// waits for it to drain, and finishes the downstream sink.
func (d *Decompressor) Finish() error {
	if err := d.pw.Close(); err != nil {
		return fmt.Errorf("decompressor flush error: %w", err)
	}
	if err := <-d.done; err != nil {
		return err
	}
	return d.out.Finish()
}
