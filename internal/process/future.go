package process

import (
	"context"
	"sync"
)

// Future is the handle of a value produced on another goroutine. Poll never
// blocks, which lets a single consumer check many in-flight operations per tick.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
}

// Go runs fn on a new goroutine and returns a Future for its result.
func Go[T any](fn func() T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		f.resolve(fn())
	}()
	return f
}

// NewFuture returns an unresolved Future and the function that resolves it.
// Only the first call to resolve has an effect.
func NewFuture[T any]() (*Future[T], func(T)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve
}

func (f *Future[T]) resolve(v T) {
	f.once.Do(func() {
		f.val = v
		close(f.done)
	})
}

// Poll returns the value and true when the Future is complete, without waiting.
func (f *Future[T]) Poll() (T, bool) {
	select {
	case <-f.done:
		return f.val, true
	default:
		var zero T
		return zero, false
	}
}

func (f *Future[T]) Wait() T {
	<-f.done
	return f.val
}

// WaitContext waits for the value or until ctx is done. Abandoning the wait
// does not stop the producer.
func (f *Future[T]) WaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
