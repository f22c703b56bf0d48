package loan

import (
	"context"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/page"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=loan

// Repository defines the contract for loan data storage.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id int64) (Loan, error)
	SetReturned(ctx context.Context, id int64, returned bool) error
	// ExistsOpenByBook reports whether the book has an unreturned loan other
	// than exceptID.
	ExistsOpenByBook(ctx context.Context, bookID, exceptID int64) (bool, error)
	Search(ctx context.Context, f Filter, req page.Request) ([]Loan, int, error)
	FindByBook(ctx context.Context, bookID int64, req page.Request) ([]Loan, int, error)
	// FindOverdue returns unreturned loans dated on or before cutoff.
	FindOverdue(ctx context.Context, cutoff time.Time) ([]Loan, error)
}

// BookFinder resolves the book a loan refers to.
type BookFinder interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
	GetByISBN(ctx context.Context, isbn string) (book.Book, error)
}
