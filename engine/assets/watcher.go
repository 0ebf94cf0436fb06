package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/ose/engine/containers"
	"github.com/spaghettifunk/ose/engine/core"
)

const metaExt = ".meta"

var ErrWatcherClosed = errors.New("asset watcher already closed")

// Watcher reports files changed under a Resources directory. The fsnotify loop
// runs on its own goroutine and only queues paths; the game goroutine collects
// them with Drain.
type Watcher struct {
	root string

	mutex    sync.Mutex
	pending  *containers.RingQueue[string]
	queued   map[string]struct{}
	isClosed bool

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher over root holding at most capacity pending paths.
func NewWatcher(root string, capacity int) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		pending:  containers.NewRingQueue[string](capacity),
		queued:   make(map[string]struct{}),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and all sub-directories.
func (w *Watcher) Start() error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.start()
	core.LogInfo("watching %s for resource changes", w.root)
	return nil
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handleEvent(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogWarn("could not watch new directory %s: %s", e.Name, err.Error())
			}
			return
		}
	}
	// Can't stat a removed path, so let fsnotify decide whether it was watched.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		_ = w.fsnotify.Remove(e.Name)
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.enqueue(e.Name)
	}
}

func (w *Watcher) enqueue(absPath string) {
	rel, err := filepath.Rel(w.root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	// A changed sidecar reloads the resource it describes.
	rel = filepath.ToSlash(strings.TrimSuffix(rel, metaExt))

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return
	}
	if _, ok := w.queued[rel]; ok {
		return
	}
	if err := w.pending.Enqueue(rel); err != nil {
		core.LogWarn("asset watcher queue full, dropping change to %s", rel)
		return
	}
	w.queued[rel] = struct{}{}
}

// Drain returns the changed paths, relative to root, in the order they were
// first seen since the previous call.
func (w *Watcher) Drain() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	var out []string
	for !w.pending.IsEmpty() {
		rel, err := w.pending.Dequeue()
		if err != nil {
			break
		}
		delete(w.queued, rel)
		out = append(out, rel)
	}
	return out
}

// Close stops the watch loop and releases the fsnotify handle.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return ErrWatcherClosed
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}

// watchRecursive adds path and every directory below it to the watch list.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}
