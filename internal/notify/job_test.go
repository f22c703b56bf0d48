package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/loan"
)

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) FindOverdue(ctx context.Context, thresholdDays int) ([]loan.Loan, error) {
	args := m.Called(ctx, thresholdDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.Loan), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, message string, recipients []string) error {
	args := m.Called(ctx, message, recipients)
	return args.Error(0)
}

type mockRuns struct {
	mock.Mock
}

func (m *mockRuns) CreateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	run.ID = 1
	return args.Error(0)
}

func (m *mockRuns) UpdateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

const testMessage = "Atenção! Você tem um empréstimo atrasado."

func newTestJob() (*Job, *mockFinder, *mockMailer, *mockRuns) {
	finder := new(mockFinder)
	mailer := new(mockMailer)
	runs := new(mockRuns)
	job := NewJob(finder, mailer, runs, testMessage, loan.DefaultOverdueDays)
	job.now = func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }
	return job, finder, mailer, runs
}

func TestJob_SendsOnceToDistinctEmails(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()

	finder.On("FindOverdue", ctx, 4).Return([]loan.Loan{
		{ID: 1, Email: "a@x.com"},
		{ID: 2, Email: ""},
		{ID: 3, Email: "b@x.com"},
		{ID: 4, Email: "a@x.com"},
	}, nil)
	mailer.On("Send", ctx, testMessage, []string{"a@x.com", "b@x.com"}).Return(nil).Once()
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r *Run) bool {
		return r.Status == StatusCompleted && r.FinishedAt != nil
	})).Return(nil)

	run, err := job.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, TriggerScheduled, run.Trigger)
	assert.Equal(t, 4, run.LoansFound)
	assert.Equal(t, 2, run.Recipients)
	mailer.AssertExpectations(t)
	runs.AssertExpectations(t)
}

func TestJob_NothingOverdue(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()

	finder.On("FindOverdue", ctx, 4).Return(nil, nil)
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

	run, err := job.RunTriggered(ctx, TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, 0, run.Recipients)
	assert.Equal(t, TriggerManual, run.Trigger)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestJob_OnlyEmptyEmails(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()

	finder.On("FindOverdue", ctx, 4).Return([]loan.Loan{{ID: 1}, {ID: 2}}, nil)
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

	run, err := job.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, run.LoansFound)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestJob_MailerFailureIsJournaled(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()
	sendErr := errors.New("connection refused")

	finder.On("FindOverdue", ctx, 4).Return([]loan.Loan{{ID: 1, Email: "a@x.com"}}, nil)
	mailer.On("Send", ctx, testMessage, []string{"a@x.com"}).Return(sendErr).Once()
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r *Run) bool {
		return r.Status == StatusFailed && r.Error == "connection refused"
	})).Return(nil)

	run, err := job.Run(ctx)

	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, StatusFailed, run.Status)
	mailer.AssertNumberOfCalls(t, "Send", 1)
	runs.AssertExpectations(t)
}

func TestJob_JournalUnavailable(t *testing.T) {
	job, finder, _, runs := newTestJob()
	ctx := context.Background()
	dbErr := errors.New("db down")

	runs.On("CreateRun", ctx, mock.Anything).Return(dbErr)

	_, err := job.Run(ctx)

	assert.ErrorIs(t, err, dbErr)
	finder.AssertNotCalled(t, "FindOverdue", mock.Anything, mock.Anything)
}

func TestJob_ManualRunRefusedWhileRunning(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	finder.On("FindOverdue", ctx, 4).Return([]loan.Loan{{ID: 1, Email: "a@x.com"}}, nil)
	mailer.On("Send", ctx, testMessage, []string{"a@x.com"}).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(ctx)
		done <- err
	}()
	<-started

	_, err := job.RunTriggered(ctx, TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
	mailer.AssertNumberOfCalls(t, "Send", 1)
	runs.AssertNumberOfCalls(t, "CreateRun", 1)
}

func TestJob_ScheduledRunsDoNotOverlap(t *testing.T) {
	job, finder, mailer, runs := newTestJob()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
	)
	finder.On("FindOverdue", ctx, 4).Return([]loan.Loan{{ID: 1, Email: "a@x.com"}}, nil)
	mailer.On("Send", ctx, testMessage, []string{"a@x.com"}).
		Run(func(mock.Arguments) {
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}).
		Return(nil)
	runs.On("CreateRun", ctx, mock.Anything).Return(nil)
	runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := job.Run(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	mailer.AssertNumberOfCalls(t, "Send", 3)
}
