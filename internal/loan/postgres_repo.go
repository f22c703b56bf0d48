package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/book"
	"libraryapi/internal/page"
)

const (
	constraintOpenLoan = "loans_open_book_key"
	constraintBookFK   = "loans_book_id_fkey"
	sqlStateUnique     = "23505"
	sqlStateForeignKey = "23503"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// translateError maps constraint violations to domain errors. The partial
// unique index on open loans backs the check done by the service.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlStateUnique && pgErr.ConstraintName == constraintOpenLoan:
			return ErrBookOnLoan
		case pgErr.Code == sqlStateForeignKey && pgErr.ConstraintName == constraintBookFK:
			return book.ErrNotFound
		}
	}
	return err
}

func scanLoan(row pgx.Row) (Loan, error) {
	var (
		l Loan
		b book.Book
	)
	err := row.Scan(&l.ID, &l.BookID, &l.Customer, &l.Email, &l.LoanDate, &l.Returned,
		&b.ID, &b.Title, &b.Author, &b.ISBN)
	if err != nil {
		return Loan{}, err
	}
	l.Book = &b
	return l, nil
}

func (r *PostgresRepo) Create(ctx context.Context, l *Loan) error {
	const query = `
		INSERT INTO loans (book_id, customer, email, loan_date, returned)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, l.BookID, l.Customer, l.Email, l.LoanDate, l.Returned).Scan(&l.ID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Loan, error) {
	query, args, err := buildGetQuery(id)
	if err != nil {
		return Loan{}, fmt.Errorf("build loan query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	l, err := scanLoan(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Loan{}, ErrNotFound
		}
		return Loan{}, err
	}
	return l, nil
}

func (r *PostgresRepo) SetReturned(ctx context.Context, id int64, returned bool) error {
	const query = `UPDATE loans SET returned = $1 WHERE id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, returned, id)
	if err != nil {
		return translateError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ExistsOpenByBook(ctx context.Context, bookID, exceptID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM loans WHERE book_id = $1 AND NOT returned AND id <> $2)`
	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, bookID, exceptID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Search(ctx context.Context, f Filter, req page.Request) ([]Loan, int, error) {
	dataSQL, dataArgs, countSQL, countArgs, err := buildSearchQueries(f, req)
	if err != nil {
		return nil, 0, fmt.Errorf("build loan search query: %w", err)
	}
	return r.page(ctx, dataSQL, dataArgs, countSQL, countArgs)
}

func (r *PostgresRepo) FindByBook(ctx context.Context, bookID int64, req page.Request) ([]Loan, int, error) {
	dataSQL, dataArgs, countSQL, countArgs, err := buildByBookQueries(bookID, req)
	if err != nil {
		return nil, 0, fmt.Errorf("build book loans query: %w", err)
	}
	return r.page(ctx, dataSQL, dataArgs, countSQL, countArgs)
}

func (r *PostgresRepo) page(ctx context.Context, dataSQL string, dataArgs []any, countSQL string, countArgs []any) ([]Loan, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	loans, err := r.list(timeoutCtx, dataSQL, dataArgs)
	if err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

func (r *PostgresRepo) FindOverdue(ctx context.Context, cutoff time.Time) ([]Loan, error) {
	query, args, err := buildOverdueQuery(cutoff)
	if err != nil {
		return nil, fmt.Errorf("build overdue query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.list(timeoutCtx, query, args)
}

func (r *PostgresRepo) list(ctx context.Context, query string, args []any) ([]Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
