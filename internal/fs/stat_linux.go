//go:build linux

package fs

import (
	"io/fs"
	"syscall"
	"time"

	"ccsnap/internal/snap"
)

// platformTimes fills in the access time. Birth time is not exposed
// through Stat_t on Linux.
func platformTimes(info fs.FileInfo, times *snap.FileTimes) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	atime := time.Unix(int64(stat.Atim.Sec), int64(stat.Atim.Nsec))
	times.Accessed = &atime
}
