package scheduler

import (
	"context"
	"sync"
	"time"

	"JournalCrawler/internal/ports"
)

// IntervalScheduler runs a job once on Start and then on every tick.
// Jobs never overlap, and the tick the ticker holds back while a job
// overruns is discarded instead of starting another run right away.
type IntervalScheduler struct {
	every time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler firing every d; d <= 0 means 24h.
func NewIntervalScheduler(d time.Duration) *IntervalScheduler {
	if d <= 0 {
		d = 24 * time.Hour
	}
	return &IntervalScheduler{every: d}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		loop(ctx, ticker.C, stop, job)
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for a running job to return,
// or for ctx to expire.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func loop(ctx context.Context, ticks <-chan time.Time, stop <-chan struct{}, job func(time.Time)) {
	job(time.Now())
	for {
		drain(ticks)
		select {
		case t := <-ticks:
			job(t)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// drain drops a tick that became ready while the previous job ran.
func drain(ticks <-chan time.Time) {
	select {
	case <-ticks:
	default:
	}
}
