package remote

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bondhub/internal/stream"
)

type feedFunc func(ctx context.Context) *stream.Stream[Change]

func (f feedFunc) Changes(ctx context.Context) *stream.Stream[Change] { return f(ctx) }

func TestSnapshotRefetchesOnMatchingChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed := feedFunc(func(ctx context.Context) *stream.Stream[Change] {
		return stream.Of(ctx,
			Change{Collection: CollectionUsers, Op: "UPDATE", ID: "u1"},
			Change{Collection: CollectionChats, Op: "UPDATE", ID: "c1"},
		)
	})

	var calls atomic.Int32
	fetch := func(context.Context) (int32, error) { return calls.Add(1), nil }

	s := Snapshot(ctx, feed, CollectionUsers, fetch)
	defer s.Close()

	select {
	case <-s.Done():
	case <-ctx.Done():
		t.Fatal("snapshot did not finish after the feed ended")
	}
	require.NoError(t, s.Err())

	// initial fetch plus the users change; the chats change is ignored
	assert.Equal(t, int32(2), calls.Load())
	var last int32
	for v := range s.C() {
		last = v
	}
	assert.Equal(t, int32(2), last)
}
