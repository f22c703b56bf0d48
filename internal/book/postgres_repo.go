package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/page"
)

const (
	constraintISBNUnique = "books_isbn_key"
	sqlStateUnique       = "23505"
	sqlStateForeignKey   = "23503"
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

// translateError maps constraint violations to domain errors. The unique
// index on isbn backs the existence check done by the service.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlStateUnique && pgErr.ConstraintName == constraintISBNUnique:
			return ErrDuplicateISBN
		case pgErr.Code == sqlStateForeignKey:
			return ErrHasLoans
		}
	}
	return err
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (title, author, isbn)
		VALUES ($1, $2, $3)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, b.Title, b.Author, b.ISBN).Scan(&b.ID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `SELECT id, title, author, isbn FROM books WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	const query = `SELECT id, title, author, isbn FROM books WHERE isbn = $1`
	return r.getOne(ctx, query, isbn)
}

func (r *PostgresRepo) getOne(ctx context.Context, query string, arg any) (Book, error) {
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1)`
	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, isbn).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const query = `UPDATE books SET title = $1, author = $2 WHERE id = $3`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, b.Title, b.Author, b.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM books WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, id)
	if err != nil {
		return translateError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Search(ctx context.Context, f Filter, req page.Request) ([]Book, int, error) {
	countSQL, countArgs, err := buildCountQuery(f)
	if err != nil {
		return nil, 0, fmt.Errorf("build book count query: %w", err)
	}
	dataSQL, dataArgs, err := buildSearchQuery(f, req)
	if err != nil {
		return nil, 0, fmt.Errorf("build book search query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(timeoutCtx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
