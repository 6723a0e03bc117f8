package app

import (
	"os"
	"os/user"
	"runtime"

	"ccsnap/internal/snap"
)

// hostInfo describes the current machine for snapshot metadata.
// Lookups that fail leave their field empty.
func hostInfo() snap.HostInfo {
	info := snap.HostInfo{
		OSType:    runtime.GOOS,
		OSVersion: osVersion(),
	}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	info.Username = currentUsername(os.Getenv)
	return info
}

func currentUsername(getenv func(string) string) string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := getenv("USER"); name != "" {
		return name
	}
	return getenv("USERNAME")
}
