package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualTicker(ticks chan time.Time) tickerFunc {
	return func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
}

func waitRun(t *testing.T, runs <-chan struct{}) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_RunsImmediatelyThenOnTick(t *testing.T) {
	s := NewScheduler()
	ticks := make(chan time.Time)
	s.newTicker = manualTicker(ticks)

	runs := make(chan struct{}, 10)
	s.AddJob("job", time.Minute, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})

	s.Start()
	waitRun(t, runs)

	ticks <- time.Now()
	waitRun(t, runs)

	s.Stop()
	assert.Empty(t, runs)
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s := NewScheduler()
	s.newTicker = manualTicker(make(chan time.Time))

	var count atomic.Int32
	runs := make(chan struct{}, 10)
	s.AddJob("job", time.Minute, func(ctx context.Context) error {
		count.Add(1)
		runs <- struct{}{}
		return nil
	})

	s.Start()
	s.Start()
	waitRun(t, runs)
	s.Stop()

	assert.Equal(t, int32(1), count.Load())
}

func TestScheduler_DisabledJob(t *testing.T) {
	s := NewScheduler()
	s.AddJob("disabled", 0, func(ctx context.Context) error { return nil })
	s.AddJob("enabled", time.Minute, func(ctx context.Context) error { return nil })

	assert.Equal(t, []string{"enabled"}, s.Jobs())
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler()
	s.newTicker = manualTicker(make(chan time.Time))

	started := make(chan struct{})
	s.AddJob("long", time.Minute, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	s.Start()
	<-started

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_RunOnceIsolatesFailures(t *testing.T) {
	s := NewScheduler()

	var ran []string
	s.AddJob("fails", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "fails")
		return errors.New("boom")
	})
	s.AddJob("panics", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "panics")
		panic("unexpected")
	})
	s.AddJob("ok", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"fails", "panics", "ok"}, ran)
}

func TestScheduler_Run(t *testing.T) {
	s := NewScheduler()
	s.AddJob("job", time.Minute, func(ctx context.Context) error { return errors.New("job error") })

	assert.EqualError(t, s.Run(context.Background(), "job"), "job error")

	err := s.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job")
}
