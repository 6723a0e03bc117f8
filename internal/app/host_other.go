//go:build !linux && !darwin && !freebsd && !openbsd && !netbsd && !windows

package app

func osVersion() string { return "" }
