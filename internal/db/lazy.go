package db

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultDialTimeout = 10 * time.Second

// Lazy opens a connection on first use and hands the same one to every
// later caller. Concurrent first callers share a single dial. A failed dial
// is not remembered, so the next caller tries again.
type Lazy[T any] struct {
	dial    func(ctx context.Context) (T, error)
	timeout time.Duration

	mu    sync.Mutex
	conn  T
	ready bool
	group singleflight.Group
}

func NewLazy[T any](dial func(ctx context.Context) (T, error), timeout time.Duration) *Lazy[T] {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	return &Lazy[T]{dial: dial, timeout: timeout}
}

func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if conn, ok := l.Peek(); ok {
		return conn, nil
	}

	ch := l.group.DoChan("dial", func() (any, error) {
		if conn, ok := l.Peek(); ok {
			return conn, nil
		}

		// the dial outlives any single waiter
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		conn, err := l.dial(dctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.conn = conn
		l.ready = true
		l.mu.Unlock()

		return conn, nil
	})

	var zero T

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Peek returns the connection if one is already open.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.conn, l.ready
}

// Close releases an open connection with closeFn. It is a no-op if the
// connection was never opened.
func (l *Lazy[T]) Close(closeFn func(T) error) error {
	l.mu.Lock()
	conn, ready := l.conn, l.ready
	var zero T
	l.conn, l.ready = zero, false
	l.mu.Unlock()

	if !ready {
		return nil
	}

	return closeFn(conn)
}
