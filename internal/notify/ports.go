package notify

import (
	"context"

	"libraryapi/internal/loan"
)

// OverdueFinder lists loans that are past due.
type OverdueFinder interface {
	FindOverdue(ctx context.Context, thresholdDays int) ([]loan.Loan, error)
}

// RunRepository journals job executions.
type RunRepository interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
}
