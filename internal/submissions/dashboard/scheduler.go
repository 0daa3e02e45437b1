package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires refresh ticks for open dashboard streams.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &Scheduler{
		cron:     cron.New(),
		interval: interval,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("dashboard refresh scheduler started", "interval", s.interval.String())
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Subscribe returns a channel that receives a value on every tick and a
// function that removes the entry. Ticks are dropped while the previous one
// is still unread.
func (s *Scheduler) Subscribe() (<-chan time.Time, func(), error) {
	ticks := make(chan time.Time, 1)
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		select {
		case ticks <- time.Now():
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("schedule refresh: %w", err)
	}
	return ticks, func() { s.cron.Remove(id) }, nil
}

// Entries reports how many streams are currently scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
