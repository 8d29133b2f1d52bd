package handlers

import (
	"context"
	"time"

	"bondhub/internal/stream"
)

// settleWindow is how long a snapshot waits for the refresh that follows the
// first cached value.
const settleWindow = 300 * time.Millisecond

// snapshot reads an observe stream the way a REST call needs it: the latest
// value once the stream has been quiet for settleWindow.
func snapshot[T any](ctx context.Context, s *stream.Stream[T]) (T, error) {
	defer s.Close()

	latest, ok := s.Next(ctx)
	if !ok {
		if err := s.Err(); err != nil {
			return latest, err
		}
		return latest, ctx.Err()
	}
	timer := time.NewTimer(settleWindow)
	defer timer.Stop()
	for {
		select {
		case v, ok := <-s.C():
			if !ok {
				return latest, nil
			}
			latest = v
			timer.Reset(settleWindow)
		case <-timer.C:
			return latest, nil
		case <-ctx.Done():
			return latest, nil
		}
	}
}
