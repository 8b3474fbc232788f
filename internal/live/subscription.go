// Package live models push-based data delivery as cancellable listener subscriptions.
//
// A Listener is a blocking source of full snapshots. Subscribe drives one listener on its own
// goroutine and exposes the snapshots as a channel; Watcher re-subscribes whenever its key
// changes. Snapshots are full materialized states, so slow consumers only observe the latest.
package live

import (
	"context"
	"sync"
)

// Listener yields successive snapshots. Next blocks until the next snapshot is available,
// the listener's context is cancelled, or a terminal error occurs. Stop is called exactly
// once, from the goroutine that calls Next.
type Listener[T any] interface {
	Next() (T, error)
	Stop()
}

// Opener starts a listener bound to ctx.
type Opener[T any] func(ctx context.Context) (Listener[T], error)

type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Subscribe opens a listener and starts delivering its snapshots. The subscription ends when
// parent is cancelled, Close is called, or the listener fails.
func Subscribe[T any](parent context.Context, open Opener[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx, open)
	return s
}

func (s *Subscription[T]) run(ctx context.Context, open Opener[T]) {
	defer close(s.done)
	defer close(s.updates)

	l, err := open(ctx)
	if err != nil {
		s.setErr(err)
		return
	}
	defer l.Stop()

	for {
		v, err := l.Next()
		if err != nil {
			// cancellation is a teardown, not a failure
			if ctx.Err() == nil {
				s.setErr(err)
			}
			return
		}
		SendLatest(s.updates, v)
	}
}

// Updates is closed when the subscription ends.
func (s *Subscription[T]) Updates() <-chan T { return s.updates }

// Done is closed once the listener has been stopped.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the subscription, nil for a clean teardown.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the subscription down and waits for the listener to stop.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// SendLatest delivers v without blocking, replacing an undelivered older value.
// ch must have capacity 1 and a single sender at a time.
func SendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
