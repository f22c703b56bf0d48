package loan

import (
	"context"
	"errors"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/page"
)

// Service provides loan-related business logic.
type Service struct {
	repo  Repository
	books BookFinder
	now   func() time.Time
}

// NewService creates a new loan service.
func NewService(repo Repository, books BookFinder) *Service {
	return &Service{repo: repo, books: books, now: time.Now}
}

// today returns the current local calendar date as UTC midnight.
func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create opens a loan of the book with bookID dated today.
func (s *Service) Create(ctx context.Context, bookID int64, customer, email string) (Loan, error) {
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Loan{}, err
	}
	return s.open(ctx, b, customer, email)
}

// Checkout opens a loan of the book identified by isbn.
func (s *Service) Checkout(ctx context.Context, isbn, customer, email string) (Loan, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if errors.Is(err, book.ErrNotFound) {
		return Loan{}, ErrBookNotFoundForISBN
	}
	if err != nil {
		return Loan{}, err
	}
	return s.open(ctx, b, customer, email)
}

func (s *Service) open(ctx context.Context, b book.Book, customer, email string) (Loan, error) {
	onLoan, err := s.repo.ExistsOpenByBook(ctx, b.ID, 0)
	if err != nil {
		return Loan{}, err
	}
	if onLoan {
		return Loan{}, ErrBookOnLoan
	}

	l := Loan{
		BookID:   b.ID,
		Customer: customer,
		Email:    email,
		LoanDate: s.today(),
		Book:     &b,
	}
	if err := s.repo.Create(ctx, &l); err != nil {
		return Loan{}, err
	}
	return l, nil
}

// GetByID returns a loan by its id.
func (s *Service) GetByID(ctx context.Context, id int64) (Loan, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkReturned closes a loan. Returning a returned loan is a no-op.
func (s *Service) MarkReturned(ctx context.Context, id int64) (Loan, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if l.Returned {
		return l, nil
	}
	if err := s.repo.SetReturned(ctx, id, true); err != nil {
		return Loan{}, err
	}
	l.Returned = true
	return l, nil
}

// SetReturned sets the returned flag. Reopening a loan fails with
// ErrBookOnLoan while the book has another open loan.
func (s *Service) SetReturned(ctx context.Context, id int64, returned bool) (Loan, error) {
	if returned {
		return s.MarkReturned(ctx, id)
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if !l.Returned {
		return l, nil
	}
	onLoan, err := s.repo.ExistsOpenByBook(ctx, l.BookID, l.ID)
	if err != nil {
		return Loan{}, err
	}
	if onLoan {
		return Loan{}, ErrBookOnLoan
	}
	if err := s.repo.SetReturned(ctx, id, false); err != nil {
		return Loan{}, err
	}
	l.Returned = false
	return l, nil
}

// Search returns one page of loans matching f.
func (s *Service) Search(ctx context.Context, f Filter, req page.Request) (page.Page[Loan], error) {
	loans, total, err := s.repo.Search(ctx, f, req)
	if err != nil {
		return page.Page[Loan]{}, err
	}
	return page.New(loans, total, req), nil
}

// FindByBook returns one page of the loans of a book.
func (s *Service) FindByBook(ctx context.Context, bookID int64, req page.Request) (page.Page[Loan], error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return page.Page[Loan]{}, err
	}
	loans, total, err := s.repo.FindByBook(ctx, bookID, req)
	if err != nil {
		return page.Page[Loan]{}, err
	}
	return page.New(loans, total, req), nil
}

// FindOverdue returns unreturned loans dated thresholdDays or more days ago.
func (s *Service) FindOverdue(ctx context.Context, thresholdDays int) ([]Loan, error) {
	cutoff := s.today().AddDate(0, 0, -thresholdDays)
	return s.repo.FindOverdue(ctx, cutoff)
}
