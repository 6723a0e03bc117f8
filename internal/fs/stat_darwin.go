//go:build darwin

package fs

import (
	"io/fs"
	"syscall"
	"time"

	"ccsnap/internal/snap"
)

func platformTimes(info fs.FileInfo, times *snap.FileTimes) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	atime := time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
	btime := time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	times.Accessed = &atime
	times.Created = &btime
}
