package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_RunsAtStartAndOnTrigger(t *testing.T) {
	var calls atomic.Int32
	r := New(0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	r.Trigger()
	r.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestRefresher_Schedule(t *testing.T) {
	var calls atomic.Int32
	r := New(time.Second, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestRefresher_ErrorsDoNotStopIt(t *testing.T) {
	var calls atomic.Int32
	r := New(0, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}, zerolog.Nop())

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	r.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRefresher_StopCancelsAndWaits(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	r := New(0, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	}, zerolog.Nop())

	require.NoError(t, r.Start(context.Background()))
	<-started

	r.Stop()
	assert.True(t, finished.Load())

	// No-ops once stopped
	r.Trigger()
	r.Stop()
}

func TestRefresher_StartTwice(t *testing.T) {
	r := New(0, func(ctx context.Context) error { return nil }, zerolog.Nop())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Error(t, r.Start(context.Background()))
}

func TestRefresher_TriggerBeforeStart(t *testing.T) {
	var calls atomic.Int32
	r := New(0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	r.Trigger()
	r.Stop()
	assert.Equal(t, int32(0), calls.Load())
}
