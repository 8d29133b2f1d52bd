package repositories

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bondhub/internal/cache"
	"bondhub/internal/mapper"
	"bondhub/internal/models"
	"bondhub/internal/observability"
	"bondhub/internal/remote"
	"bondhub/internal/stream"
)

// observeWithRefresh streams a cache query and, once per subscription, pulls
// the same data from the remote store into the cache. The pull runs beside
// the stream; when it fails the stream keeps serving cached rows.
func observeWithRefresh[T any](
	ctx context.Context,
	store *cache.Store,
	log *zap.Logger,
	op string,
	fetch func(context.Context) (T, error),
	refresh func(context.Context) error,
	tables ...string,
) *stream.Stream[T] {
	return stream.Start(ctx, func(ctx context.Context, emit func(T) bool) error {
		local := cache.Watch(ctx, store, fetch, tables...)

		pulled := make(chan struct{})
		go func() {
			defer close(pulled)
			if err := refresh(ctx); err != nil && ctx.Err() == nil {
				observability.IncCacheFallback(op)
				log.Warn("remote refresh failed, serving cache", zap.String("op", op), zap.Error(err))
			}
		}()
		defer func() { <-pulled }()

		return stream.Forward(ctx, local, emit, func(v T) T { return v })
	})
}

// remoteFailed counts and records a failed remote call. Domain outcomes
// such as a missing document are not failures.
func remoteFailed(span trace.Span, op string, err error) {
	if domainError(err) {
		return
	}
	observability.IncRemoteFailure(op)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func domainError(err error) bool {
	for _, target := range []error{
		remote.ErrDocumentNotFound,
		remote.ErrDuplicateDocument,
		mapper.ErrUnknownValue,
		models.ErrConnectionNotFound,
		models.ErrChatNotFound,
		models.ErrMessageNotFound,
		models.ErrUserProfileNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
