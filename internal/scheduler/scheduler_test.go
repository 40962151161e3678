package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/refresh"
	"github.com/NastyaGoryachaya/crypto-tracker-service/pkg/logger"
)

// fakeRefresher — считает вызовы и выполняет fn, если задана
type fakeRefresher struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	fn       func(ctx context.Context, n int32) error
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) (refresh.Stats, error) {
	n := f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	if cur > f.maxSeen.Load() {
		f.maxSeen.Store(cur)
	}
	if f.fn != nil {
		return refresh.Stats{}, f.fn(ctx, n)
	}
	return refresh.Stats{}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, 0, logger.Discard())
	if s.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", s.interval, DefaultInterval)
	}
}

func TestStart_Twice(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, time.Hour, logger.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestFirstRunAfterInterval(t *testing.T) {
	r := &fakeRefresher{}
	s := NewScheduler(r, time.Hour, logger.Discard())
	_ = s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	if got := r.calls.Load(); got != 0 {
		t.Fatalf("expected no cycle before the first interval, got %d", got)
	}
}

func TestRunOnStart(t *testing.T) {
	r := &fakeRefresher{}
	s := NewScheduler(r, time.Hour, logger.Discard(), WithRunOnStart(true))
	_ = s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return r.calls.Load() == 1 })
}

func TestCycleErrorsAndPanicsDoNotStopLoop(t *testing.T) {
	r := &fakeRefresher{fn: func(_ context.Context, n int32) error {
		switch n {
		case 1:
			panic("boom")
		case 2:
			return errors.New("upstream down")
		}
		return nil
	}}
	s := NewScheduler(r, 10*time.Millisecond, logger.Discard())
	_ = s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return r.calls.Load() >= 3 })
}

func TestStop_WaitsForInFlightCycle(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var finished atomic.Bool
	r := &fakeRefresher{fn: func(ctx context.Context, _ int32) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	}}
	s := NewScheduler(r, time.Hour, logger.Discard(), WithRunOnStart(true))
	_ = s.Start(context.Background())

	<-started
	s.Stop()
	if !finished.Load() {
		t.Fatalf("Stop returned before the cycle finished")
	}
	// повторный Stop безопасен
	s.Stop()
}

func TestCyclesAreSerialized(t *testing.T) {
	r := &fakeRefresher{fn: func(context.Context, int32) error {
		time.Sleep(15 * time.Millisecond)
		return nil
	}}
	s := NewScheduler(r, time.Millisecond, logger.Discard())
	_ = s.Start(context.Background())
	waitFor(t, func() bool { return r.calls.Load() >= 3 })
	s.Stop()

	if m := r.maxSeen.Load(); m != 1 {
		t.Fatalf("expected at most one cycle in flight, saw %d", m)
	}
}
