// Package watch implements tallow's debounced directory watcher: a bounded
// OS thread watches a directory via fsnotify and emits deduplicated
// create/modify batches on a channel after a debounce interval.
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// DefaultDebounce is the default batch-release interval.
const DefaultDebounce = 500 * time.Millisecond

// Batch is one debounced set of changed paths.
type Batch struct {
	Paths []string
}

// Handle lets a caller stop a running watch.
type Handle struct {
	stop chan struct{}
	done chan struct{}
}

// Stop signals the watcher to shut down and waits for it to exit.
func (h *Handle) Stop() {
	close(h.stop)
	<-h.done
}

// Watch starts watching dir, emitting debounced batches of changed paths
// on the returned channel until the Handle is stopped. Only Create and
// Write (Modify) events are surfaced; Rename/Remove/Chmod are dropped.
func Watch(dir string, debounce time.Duration) (<-chan Batch, *Handle, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errs.Wrap(errs.ResourceExhausted, "fsnotify init", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, nil, errs.Wrap(errs.InvalidArgument, "watch directory", err)
	}

	out := make(chan Batch)
	handle := &Handle{stop: make(chan struct{}), done: make(chan struct{})}

	go runLoop(w, out, handle, debounce)
	return out, handle, nil
}

func runLoop(w *fsnotify.Watcher, out chan<- Batch, handle *Handle, debounce time.Duration) {
	defer close(out)
	defer w.Close()
	defer close(handle.done)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := Batch{Paths: make([]string, 0, len(pending))}
		for p := range pending {
			batch.Paths = append(batch.Paths, p)
		}
		pending = make(map[string]struct{})
		out <- batch
	}

	for {
		select {
		case <-handle.stop:
			if timer != nil {
				timer.Stop()
			}
			flush()
			return

		case ev, ok := <-w.Events:
			if !ok {
				flush()
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			}

		case <-timerC:
			flush()
			timer = nil
			timerC = nil

		case _, ok := <-w.Errors:
			if !ok {
				flush()
				return
			}
		}
	}
}
