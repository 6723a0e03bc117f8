package app

import (
	"runtime"
	"testing"
)

func TestHostInfo(t *testing.T) {
	info := hostInfo()
	if info.OSType != runtime.GOOS {
		t.Errorf("OSType = %q, want %q", info.OSType, runtime.GOOS)
	}
	if info.Hostname == "" {
		t.Error("Hostname is empty")
	}
	if runtime.GOOS == "linux" && info.OSVersion == "" {
		t.Error("OSVersion is empty on linux")
	}
}
