//go:build linux

package sift

import "golang.org/x/sys/unix"

// adviseWillNeed hints to the kernel that the mapped table will be read
// soon, so pages are faulted in ahead of the first queries.
// Best-effort: errors are silently ignored.
func adviseWillNeed(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
