package loan

import (
	"time"

	"libraryapi/internal/apperr"
	"libraryapi/internal/book"
)

// DefaultOverdueDays is how long a loan may stay open before it is overdue.
const DefaultOverdueDays = 4

var (
	// ErrNotFound is returned when a loan is not found.
	ErrNotFound = apperr.NotFound("Empréstimo não encontrado.")
	// ErrBookOnLoan is returned when the book already has an open loan.
	ErrBookOnLoan = apperr.BusinessRule("Livro já emprestado")
	// ErrBookNotFoundForISBN is returned when a checkout names an unknown ISBN.
	ErrBookNotFoundForISBN = apperr.NotFound("Livro não encontrado para o isbn informado.")
)

// Loan records one checkout of a book by a customer.
type Loan struct {
	ID       int64
	BookID   int64
	Customer string
	Email    string
	// LoanDate is a calendar date at UTC midnight.
	LoanDate time.Time
	Returned bool
	// Book is filled in by lookups that join the book row.
	Book *book.Book
}

// ISBN returns the ISBN of the loaned book, if loaded.
func (l Loan) ISBN() string {
	if l.Book == nil {
		return ""
	}
	return l.Book.ISBN
}

// Filter selects loans whose book ISBN equals ISBN or whose customer equals
// Customer. Empty fields do not participate; an empty filter matches all.
type Filter struct {
	ISBN     string
	Customer string
}
