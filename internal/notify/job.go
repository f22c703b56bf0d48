package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"libraryapi/internal/apperr"
)

// ErrRunInProgress is returned when a manual run is requested while
// another run has not finished.
var ErrRunInProgress = apperr.Conflict("Envio de avisos já em andamento")

// Job emails every customer holding an overdue loan.
type Job struct {
	loans   OverdueFinder
	mailer  Mailer
	runs    RunRepository
	message string
	days    int
	now     func() time.Time

	// mu is held for the whole of a run so runs never overlap.
	mu sync.Mutex
}

func NewJob(loans OverdueFinder, mailer Mailer, runs RunRepository, message string, overdueDays int) *Job {
	return &Job{
		loans:   loans,
		mailer:  mailer,
		runs:    runs,
		message: message,
		days:    overdueDays,
		now:     time.Now,
	}
}

// Run executes a scheduled pass, waiting for a run in progress to finish.
func (j *Job) Run(ctx context.Context) (Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.run(ctx, TriggerScheduled)
}

// RunTriggered executes a pass now, or fails with ErrRunInProgress when
// another run holds the job.
func (j *Job) RunTriggered(ctx context.Context, trigger string) (Run, error) {
	if !j.mu.TryLock() {
		return Run{}, ErrRunInProgress
	}
	defer j.mu.Unlock()
	return j.run(ctx, trigger)
}

// run sends one message to the distinct non-empty emails of all overdue
// loans. Nothing is sent when there are none. Mailer errors are returned
// without retry; the run is journaled either way.
func (j *Job) run(ctx context.Context, trigger string) (run Run, err error) {
	run = Run{
		Trigger:     trigger,
		Status:      StatusRunning,
		StartedAt:   j.now(),
		OverdueDays: j.days,
	}
	if err := j.runs.CreateRun(ctx, &run); err != nil {
		return run, err
	}

	defer func() {
		finished := j.now()
		run.FinishedAt = &finished
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
		}
		// The journal outlives a cancelled caller.
		if updateErr := j.runs.UpdateRun(context.WithoutCancel(ctx), &run); updateErr != nil {
			slog.ErrorContext(ctx, "update notification run",
				slog.Int64("run_id", run.ID),
				slog.Any("error", updateErr),
			)
		}
	}()

	overdue, err := j.loans.FindOverdue(ctx, j.days)
	if err != nil {
		return run, err
	}
	run.LoansFound = len(overdue)

	seen := make(map[string]struct{}, len(overdue))
	var recipients []string
	for _, l := range overdue {
		if l.Email == "" {
			continue
		}
		if _, ok := seen[l.Email]; ok {
			continue
		}
		seen[l.Email] = struct{}{}
		recipients = append(recipients, l.Email)
	}
	run.Recipients = len(recipients)

	if len(recipients) == 0 {
		slog.InfoContext(ctx, "no overdue notices to send", slog.Int("overdue", run.LoansFound))
		return run, nil
	}
	if err := j.mailer.Send(ctx, j.message, recipients); err != nil {
		return run, err
	}
	slog.InfoContext(ctx, "overdue notices sent",
		slog.Int("overdue", run.LoansFound),
		slog.Int("recipients", run.Recipients),
	)
	return run, nil
}
