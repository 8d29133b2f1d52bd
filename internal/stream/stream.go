// Package stream provides a cancellable, conflating subscription used for
// reactive cache queries and remote change feeds.
package stream

import (
	"context"
	"errors"
	"sync"
)

// Stream delivers values produced by a single background producer. Values
// are conflated: a consumer that falls behind only sees the latest one.
type Stream[T any] struct {
	values chan T
	cancel context.CancelFunc
	done   chan struct{}
	queued bool

	mu  sync.Mutex
	err error
}

// Start runs produce in its own goroutine. produce must return once ctx is
// done; emit reports false when the stream has been closed.
func Start[T any](ctx context.Context, produce func(ctx context.Context, emit func(T) bool) error) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		values: make(chan T, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.run(ctx, produce)
	return s
}

// StartQueued is Start without conflation: every value is delivered and
// emit blocks once buffer values are pending. Used for event feeds where a
// dropped value is a lost event.
func StartQueued[T any](ctx context.Context, buffer int, produce func(ctx context.Context, emit func(T) bool) error) *Stream[T] {
	if buffer < 1 {
		buffer = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		values: make(chan T, buffer),
		cancel: cancel,
		done:   make(chan struct{}),
		queued: true,
	}
	s.run(ctx, produce)
	return s
}

func (s *Stream[T]) run(ctx context.Context, produce func(ctx context.Context, emit func(T) bool) error) {
	go func() {
		defer close(s.done)
		defer close(s.values)
		err := produce(ctx, func(v T) bool { return s.emit(ctx, v) })
		if err != nil && !errors.Is(err, context.Canceled) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()
}

// Of returns a stream that emits every value once, in order, and completes.
func Of[T any](ctx context.Context, values ...T) *Stream[T] {
	return StartQueued(ctx, len(values), func(ctx context.Context, emit func(T) bool) error {
		for _, v := range values {
			if !emit(v) {
				return nil
			}
		}
		return nil
	})
}

// Failed returns a stream that terminates immediately with err.
func Failed[T any](ctx context.Context, err error) *Stream[T] {
	return Start(ctx, func(context.Context, func(T) bool) error { return err })
}

func (s *Stream[T]) emit(ctx context.Context, v T) bool {
	if s.queued {
		select {
		case s.values <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for {
		if ctx.Err() != nil {
			return false
		}
		select {
		case s.values <- v:
			return true
		default:
		}
		// drop the stale pending value
		select {
		case <-s.values:
		default:
		}
	}
}

// C returns the value channel. It is closed when the producer exits.
func (s *Stream[T]) C() <-chan T {
	return s.values
}

// Next blocks for the next value. ok is false once the stream has ended or
// ctx is done.
func (s *Stream[T]) Next(ctx context.Context) (value T, ok bool) {
	select {
	case value, ok = <-s.values:
		return value, ok
	case <-ctx.Done():
		return value, false
	}
}

// Close cancels the producer and waits for it to exit.
func (s *Stream[T]) Close() {
	s.cancel()
	<-s.done
}

// Done is closed after the producer has exited.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the stream, if any. Cancellation is not
// an error.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Forward copies every value of src into emit until either side stops, and
// returns src's terminal error.
func Forward[T, U any](ctx context.Context, src *Stream[T], emit func(U) bool, convert func(T) U) error {
	defer src.Close()
	for {
		select {
		case v, ok := <-src.C():
			if !ok {
				return src.Err()
			}
			if !emit(convert(v)) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
