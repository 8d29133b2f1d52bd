package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOfEmitsValuesThenCloses(t *testing.T) {
	s := Of(context.Background(), 1)
	defer s.Close()

	v, ok := s.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.Next(context.Background())
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestSlowConsumerSeesLatestValue(t *testing.T) {
	produced := make(chan struct{})
	s := Start(context.Background(), func(ctx context.Context, emit func(int) bool) error {
		for i := 1; i <= 5; i++ {
			emit(i)
		}
		close(produced)
		<-ctx.Done()
		return ctx.Err()
	})
	defer s.Close()

	<-produced
	v, ok := s.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestErrIsReportedAfterTermination(t *testing.T) {
	boom := errors.New("boom")
	s := Failed[string](context.Background(), boom)
	defer s.Close()

	_, ok := s.Next(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), boom)
}

func TestCloseCancelsProducer(t *testing.T) {
	s := Start(context.Background(), func(ctx context.Context, emit func(int) bool) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s.Close()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("producer did not exit")
	}
	assert.NoError(t, s.Err())
}

func TestForwardConvertsValues(t *testing.T) {
	src := Of(context.Background(), 2)
	out := Start(context.Background(), func(ctx context.Context, emit func(string) bool) error {
		return Forward(ctx, src, emit, func(v int) string {
			if v == 2 {
				return "two"
			}
			return "?"
		})
	})
	defer out.Close()

	v, ok := out.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestQueuedStreamDeliversEveryValue(t *testing.T) {
	s := StartQueued(context.Background(), 2, func(ctx context.Context, emit func(int) bool) error {
		for i := 1; i <= 5; i++ {
			if !emit(i) {
				return nil
			}
		}
		return nil
	})
	defer s.Close()

	var got []int
	for v := range s.C() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}
