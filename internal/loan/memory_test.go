package loan

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/page"
)

// memBooks is an in-memory book.Repository.
type memBooks struct {
	mu    sync.Mutex
	books map[int64]book.Book
	next  int64
}

func newMemBooks() *memBooks {
	return &memBooks{books: make(map[int64]book.Book)}
}

func (m *memBooks) Create(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.books {
		if existing.ISBN == b.ISBN {
			return book.ErrDuplicateISBN
		}
	}
	m.next++
	b.ID = m.next
	m.books[b.ID] = *b
	return nil
}

func (m *memBooks) GetByID(_ context.Context, id int64) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (m *memBooks) GetByISBN(_ context.Context, isbn string) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return book.Book{}, book.ErrNotFound
}

func (m *memBooks) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	_, err := m.GetByISBN(ctx, isbn)
	return err == nil, nil
}

func (m *memBooks) Update(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return book.ErrNotFound
	}
	m.books[b.ID] = *b
	return nil
}

func (m *memBooks) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memBooks) Search(_ context.Context, f book.Filter, req page.Request) ([]book.Book, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []book.Book
	for _, b := range m.books {
		if contains(b.Title, f.Title) && contains(b.Author, f.Author) && contains(b.ISBN, f.ISBN) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return slice(out, req), len(out), nil
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func slice[T any](items []T, req page.Request) []T {
	start := min(req.Offset(), len(items))
	end := min(start+req.Size, len(items))
	return items[start:end]
}

// memLoans is an in-memory Repository that enforces one open loan per book
// the way the partial unique index does.
type memLoans struct {
	mu    sync.Mutex
	books *memBooks
	loans map[int64]Loan
	next  int64
}

func newMemLoans(books *memBooks) *memLoans {
	return &memLoans{books: books, loans: make(map[int64]Loan)}
}

func (m *memLoans) openExists(bookID, exceptID int64) bool {
	for _, l := range m.loans {
		if l.BookID == bookID && !l.Returned && l.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memLoans) withBook(l Loan) Loan {
	if b, err := m.books.GetByID(context.Background(), l.BookID); err == nil {
		l.Book = &b
	}
	return l
}

func (m *memLoans) Create(_ context.Context, l *Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !l.Returned && m.openExists(l.BookID, 0) {
		return ErrBookOnLoan
	}
	m.next++
	l.ID = m.next
	stored := *l
	stored.Book = nil
	m.loans[l.ID] = stored
	return nil
}

func (m *memLoans) GetByID(_ context.Context, id int64) (Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return Loan{}, ErrNotFound
	}
	return m.withBook(l), nil
}

func (m *memLoans) SetReturned(_ context.Context, id int64, returned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return ErrNotFound
	}
	if !returned && m.openExists(l.BookID, id) {
		return ErrBookOnLoan
	}
	l.Returned = returned
	m.loans[id] = l
	return nil
}

func (m *memLoans) ExistsOpenByBook(_ context.Context, bookID, exceptID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openExists(bookID, exceptID), nil
}

func (m *memLoans) filter(keep func(Loan) bool) []Loan {
	var out []Loan
	for _, l := range m.loans {
		l = m.withBook(l)
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memLoans) Search(_ context.Context, f Filter, req page.Request) ([]Loan, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(l Loan) bool {
		if f.ISBN == "" && f.Customer == "" {
			return true
		}
		return (f.ISBN != "" && l.ISBN() == f.ISBN) || (f.Customer != "" && l.Customer == f.Customer)
	})
	return slice(out, req), len(out), nil
}

func (m *memLoans) FindByBook(_ context.Context, bookID int64, req page.Request) ([]Loan, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(l Loan) bool { return l.BookID == bookID })
	return slice(out, req), len(out), nil
}

func (m *memLoans) FindOverdue(_ context.Context, cutoff time.Time) ([]Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(l Loan) bool { return !l.Returned && !l.LoanDate.After(cutoff) }), nil
}

// openCount returns the number of unreturned loans per book.
func (m *memLoans) openCount() map[int64]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int)
	for _, l := range m.loans {
		if !l.Returned {
			counts[l.BookID]++
		}
	}
	return counts
}
