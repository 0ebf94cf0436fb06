//go:build !linux

package core

// No portable thread id; Check falls back to the handle state only.
func currentThreadID() int {
	return 0
}
