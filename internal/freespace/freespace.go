// Package freespace implements the single external "bytes available at
// path" query used to pre-check restore capacity, grounded on the original
// tool's libc::statvfs call and age's existing dependency on
// golang.org/x/sys for OS-level primitives.
package freespace

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Available returns the number of bytes available to an unprivileged user
// on the filesystem containing path.
func Available(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("bad mountpoint or filesystem to query %s: %w", path, err)
	}
	if stat.Bsize <= 0 || stat.Blocks == 0 {
		return 0, fmt.Errorf("inconsistent filesystem data for %s", path)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
