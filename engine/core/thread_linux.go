//go:build linux

package core

import "golang.org/x/sys/unix"

func currentThreadID() int {
	return unix.Gettid()
}
