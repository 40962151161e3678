package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/refresh"
)

const DefaultInterval = 30 * time.Second

var ErrAlreadyStarted = errors.New("scheduler already started")

// Refresher — один цикл фонового обновления
type Refresher interface {
	RefreshAll(ctx context.Context) (refresh.Stats, error)
}

type Option func(*Scheduler)

// WithRunOnStart — первый цикл сразу после Start, а не через interval
func WithRunOnStart(v bool) Option {
	return func(s *Scheduler) { s.runOnStart = v }
}

type Scheduler struct {
	refresher  Refresher
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler — конструктор планировщика фонового обновления
func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start — запускает цикл в отдельной горутине; повторный Start до Stop вернёт ErrAlreadyStarted
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, done)
	return nil
}

// Stop — отменяет контекст и ждёт завершения текущего цикла. Повторный вызов ничего не делает.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval), slog.Bool("run_on_start", s.runOnStart))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.runOnce(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// runOnce — одна итерация; ошибка или паника цикла не должны ронять процесс
func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick: refresh panicked", slog.Any("panic", r))
		}
	}()

	s.logger.Debug("tick: running refresh cycle")
	started := time.Now()
	stats, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("tick: refresh failed", slog.Any("err", err))
		return
	}
	s.logger.Debug("tick: refresh cycle completed",
		slog.Int("updated", stats.Updated),
		slog.Duration("duration", time.Since(started)))
}
