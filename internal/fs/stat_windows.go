//go:build windows

package fs

import (
	"io/fs"
	"syscall"
	"time"

	"ccsnap/internal/snap"
)

func platformTimes(info fs.FileInfo, times *snap.FileTimes) {
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return
	}
	atime := time.Unix(0, attrs.LastAccessTime.Nanoseconds())
	ctime := time.Unix(0, attrs.CreationTime.Nanoseconds())
	times.Accessed = &atime
	times.Created = &ctime
}
