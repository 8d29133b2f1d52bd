package cache

import (
	"context"

	"bondhub/internal/stream"
)

// Watch runs fetch now and after every write to one of tables, emitting each
// result. A failing fetch ends the stream with that error.
func Watch[T any](ctx context.Context, s *Store, fetch func(context.Context) (T, error), tables ...string) *stream.Stream[T] {
	return stream.Start(ctx, func(ctx context.Context, emit func(T) bool) error {
		w := s.subscribe(tables)
		defer s.unsubscribe(w, tables)

		for {
			value, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if !emit(value) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.dirty:
			}
		}
	})
}
