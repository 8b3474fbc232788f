package live

import (
	"context"
	"sync"
)

// KeyedOpener starts a listener for key.
type KeyedOpener[K comparable, T any] func(ctx context.Context, key K) (Listener[T], error)

// Watcher keeps at most one subscription alive and replaces it whenever the watched key
// changes. Snapshots from every subscription it owns are delivered on one channel.
type Watcher[K comparable, T any] struct {
	ctx  context.Context
	open KeyedOpener[K, T]
	out  chan T

	mu      sync.Mutex
	key     K
	sub     *Subscription[T]
	fwdDone chan struct{}
	stopped bool
}

func NewWatcher[K comparable, T any](ctx context.Context, open KeyedOpener[K, T]) *Watcher[K, T] {
	return &Watcher[K, T]{
		ctx:  ctx,
		open: open,
		out:  make(chan T, 1),
	}
}

// Watch subscribes to key, tearing down the previous subscription first. It reports whether
// a new subscription was started; watching the current key again is a no-op, even when that
// subscription has already failed.
func (w *Watcher[K, T]) Watch(key K) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return false
	}
	if w.sub != nil && w.key == key {
		return false
	}
	w.stopLocked()

	sub := Subscribe(w.ctx, func(ctx context.Context) (Listener[T], error) {
		return w.open(ctx, key)
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range sub.Updates() {
			SendLatest(w.out, v)
		}
	}()

	w.key = key
	w.sub = sub
	w.fwdDone = done
	return true
}

// Key returns the watched key and whether anything is being watched.
func (w *Watcher[K, T]) Key() (K, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.key, w.sub != nil
}

// Updates is closed by Stop.
func (w *Watcher[K, T]) Updates() <-chan T { return w.out }

// Err returns the error of the current subscription, if it failed.
func (w *Watcher[K, T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub == nil {
		return nil
	}
	return w.sub.Err()
}

// Reset tears down the current subscription without stopping the watcher.
func (w *Watcher[K, T]) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Stop tears down the current subscription and closes Updates.
func (w *Watcher[K, T]) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopLocked()
	w.stopped = true
	close(w.out)
}

func (w *Watcher[K, T]) stopLocked() {
	if w.sub == nil {
		return
	}
	w.sub.Close()
	<-w.fwdDone
	w.sub = nil
	w.fwdDone = nil
	var zero K
	w.key = zero
}
