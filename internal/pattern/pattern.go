// Package pattern implements the chunk-file naming scheme: a filename
// template containing a single contiguous run of '%' characters, indexed by
// chunk number, plus the sidecar path derived from it.
package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// FileSet is a filename template with exactly one contiguous run of '%'.
type FileSet struct {
	template string
	offset   int // byte offset of the run's first '%'
	length   int // number of '%' characters in the run
}

// New analyzes patt and returns a FileSet, or an error if patt does not
// contain exactly one contiguous run of '%'.
func New(patt string) (*FileSet, error) {
	offset, length, err := analyze(patt)
	if err != nil {
		return nil, err
	}
	return &FileSet{template: patt, offset: offset, length: length}, nil
}

// analyze finds the single run of '%' in patt, returning its start offset
// and length. It is an error for there to be zero runs or more than one.
func analyze(patt string) (offset, length int, err error) {
	nrSeqs := 0
	seqLen := 0
	finishedSeqLen := 0
	seqStart := 0

	for pos, c := range patt {
		if seqLen == 0 {
			if c == '%' {
				seqLen = 1
				seqStart = pos
			}
			continue
		}
		if c == '%' {
			seqLen++
			continue
		}
		nrSeqs++
		if nrSeqs > 1 {
			return 0, 0, fmt.Errorf("ambigous pattern")
		}
		finishedSeqLen = seqLen
		offset = seqStart
		seqLen = 0
	}
	if seqLen != 0 {
		finishedSeqLen = seqLen
		offset = seqStart
		nrSeqs++
	}
	if nrSeqs == 0 {
		return 0, 0, fmt.Errorf("pattern character %% not found")
	}
	if nrSeqs > 1 {
		return 0, 0, fmt.Errorf("ambigous pattern")
	}
	return offset, finishedSeqLen, nil
}

// PathFor returns the concrete chunk path for chunk index i: the '%' run
// replaced by the decimal representation of i, zero-padded to the run's
// length. If i needs more digits than the run is wide, the filename grows
// rather than truncating.
func (fs *FileSet) PathFor(i int) (string, error) {
	if i < 0 {
		return "", fmt.Errorf("negative chunk index %d", i)
	}
	num := strconv.Itoa(i)
	var zeros int
	if len(num) < fs.length {
		zeros = fs.length - len(num)
	}
	var b strings.Builder
	b.WriteString(fs.template[:fs.offset])
	b.WriteString(strings.Repeat("0", zeros))
	b.WriteString(num)
	b.WriteString(fs.template[fs.offset+fs.length:])
	return b.String(), nil
}

// SidecarPath returns the path of the metadata sidecar for this file set:
// chunk 0's path with ".cfg" appended.
func (fs *FileSet) SidecarPath() (string, error) {
	p0, err := fs.PathFor(0)
	if err != nil {
		return "", err
	}
	return p0 + ".cfg", nil
}

// FromSidecarPath reconstructs a FileSet's template from a sidecar path:
// strips the ".cfg" suffix, then replaces '0' digits with '%' in the
// basename only, never in directory components.
func FromSidecarPath(p string) (*FileSet, error) {
	const suffix = ".cfg"
	if !strings.HasSuffix(p, suffix) {
		return nil, fmt.Errorf("metadata file should end with .cfg")
	}
	stripped := p[:len(p)-len(suffix)]
	template := replaceInBasename(stripped, '0', '%')
	return New(template)
}

// CfgPathFromTemplate is the inverse of FromSidecarPath's basename rewrite:
// given a template, produce its sidecar path by zeroing the pattern and
// appending ".cfg". It is equivalent to FileSet.SidecarPath but does not
// require constructing a FileSet first.
func CfgPathFromTemplate(template string) (string, error) {
	fs, err := New(template)
	if err != nil {
		return "", err
	}
	return fs.SidecarPath()
}

func replaceInBasename(s string, from, to byte) string {
	lastSlash := strings.LastIndexByte(s, '/')
	dir := s[:lastSlash+1]
	base := s[lastSlash+1:]
	return dir + strings.ReplaceAll(base, string(from), string(to))
}
