package core

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// RenderThread is the capability handed to every GPU realization entry point.
// Only the goroutine that owns the render context holds one; it is pinned to its
// OS thread for as long as the handle is active.
type RenderThread struct {
	name string
	// OS thread the handle was acquired on; zero where it cannot be read.
	tid    int
	active atomic.Bool
}

// AcquireRenderThread locks the calling goroutine to its OS thread and returns the
// handle proving it owns the render context. Must be released on the same goroutine.
func AcquireRenderThread(name string) *RenderThread {
	runtime.LockOSThread()
	rt := &RenderThread{name: name, tid: currentThreadID()}
	rt.active.Store(true)
	LogDebug("render thread '%s' acquired", name)
	return rt
}

// Release gives the OS thread back to the scheduler. The handle is unusable afterwards.
func (rt *RenderThread) Release() {
	if rt == nil || !rt.active.CompareAndSwap(true, false) {
		return
	}
	runtime.UnlockOSThread()
	LogDebug("render thread '%s' released", rt.name)
}

// Check returns ErrNotRenderThread when the handle is nil, already released or
// used from a thread other than the one that acquired it.
func (rt *RenderThread) Check(op string) error {
	if rt == nil {
		return fmt.Errorf("%s: nil handle: %w", op, ErrNotRenderThread)
	}
	if !rt.active.Load() {
		return fmt.Errorf("%s: handle '%s' released: %w", op, rt.name, ErrNotRenderThread)
	}
	if tid := currentThreadID(); rt.tid != 0 && tid != rt.tid {
		err := fmt.Errorf("%s: handle '%s' used on thread %d, acquired on %d: %w", op, rt.name, tid, rt.tid, ErrNotRenderThread)
		LogError(err.Error())
		return err
	}
	return nil
}

func (rt *RenderThread) Name() string {
	if rt == nil {
		return ""
	}
	return rt.name
}
