package notify

import "time"

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"

	TriggerScheduled = "SCHEDULED"
	TriggerManual    = "MANUAL"
)

// Run is one journaled execution of the overdue notice job.
type Run struct {
	ID          int64      `json:"id"`
	Trigger     string     `json:"trigger"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	OverdueDays int        `json:"overdueDays"`
	LoansFound  int        `json:"loansFound"`
	Recipients  int        `json:"recipients"`
	Error       string     `json:"error,omitempty"`
}
