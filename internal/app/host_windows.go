//go:build windows

package app

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// osVersion returns the Windows version as major.minor.build.
func osVersion() string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}
