package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TimeOfDay is a wall-clock time in the scheduler's location.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first occurrence of t strictly after now, in now's location.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Runner is the work a Scheduler performs.
type Runner interface {
	Run(ctx context.Context) (Run, error)
}

// Scheduler runs a job once a day. Runs are sequential.
type Scheduler struct {
	job Runner
	at  TimeOfDay
	now func() time.Time
}

func NewScheduler(job Runner, at TimeOfDay) *Scheduler {
	return &Scheduler{job: job, at: at, now: time.Now}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.at.Next(s.now())
		slog.Info("overdue notices scheduled", slog.Time("next_run", next))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("overdue notice scheduler stopped")
			return
		case <-timer.C:
		}

		run, err := s.job.Run(ctx)
		if err != nil {
			slog.Error("overdue notice run failed",
				slog.Int64("run_id", run.ID),
				slog.Any("error", err),
			)
		}
	}
}
