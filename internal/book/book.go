package book

import (
	"libraryapi/internal/apperr"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = apperr.NotFound("Livro não encontrado.")
	// ErrDuplicateISBN is returned when another book already has the ISBN.
	ErrDuplicateISBN = apperr.BusinessRule("Isbn já cadastrado")
	// ErrHasLoans is returned when deleting a book that loans still reference.
	ErrHasLoans = apperr.BusinessRule("Livro possui empréstimos registrados")
)

// Book represents a book entity.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// Filter restricts a search. Empty fields are unconstrained; set fields
// match case-insensitively as substrings and are AND-combined.
type Filter struct {
	Title  string
	Author string
	ISBN   string
}
