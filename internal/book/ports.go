package book

import (
	"context"

	"libraryapi/internal/page"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id int64) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, f Filter, req page.Request) ([]Book, int, error)
}
