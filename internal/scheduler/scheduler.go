// Package scheduler runs the weekly report batch on a fixed cadence,
// in-process, without an external job system.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner is the batch entry point the scheduler invokes on each trigger.
type Runner interface {
	RunWeeklyReports(ctx context.Context, today time.Time) (int, error)
}

// Trigger is a weekly firing time in the local timezone.
type Trigger struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

type Scheduler struct {
	trigger Trigger
	runner  Runner
	log     *zap.Logger
	now     func() time.Time
	stop    chan struct{}
	done    chan struct{}
}

func New(trigger Trigger, runner Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		trigger: trigger,
		runner:  runner,
		log:     logger,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the trigger loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the loop to exit and waits for it. A batch already running
// finishes; only the wait for the next trigger is interrupted.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		next := NextRun(s.now(), s.trigger)
		s.log.Info("next weekly report run scheduled", zap.Time("at", next))
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		processed, err := s.runner.RunWeeklyReports(context.Background(), s.now())
		if err != nil {
			s.log.Error("weekly report batch failed", zap.Error(err))
			continue
		}
		s.log.Info("weekly report batch finished", zap.Int("users_processed", processed))
	}
}

// NextRun returns the first instant strictly after now matching the trigger.
func NextRun(now time.Time, t Trigger) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	days := (int(t.Weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
