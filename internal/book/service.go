package book

import (
	"context"

	"libraryapi/internal/page"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new book. The ISBN must not belong to another book.
func (s *Service) Create(ctx context.Context, title, author, isbn string) (Book, error) {
	exists, err := s.repo.ExistsByISBN(ctx, isbn)
	if err != nil {
		return Book{}, err
	}
	if exists {
		return Book{}, ErrDuplicateISBN
	}

	b := Book{Title: title, Author: author, ISBN: isbn}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// GetByID returns a book by its id.
func (s *Service) GetByID(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// Update overwrites title and author. The ISBN never changes.
func (s *Service) Update(ctx context.Context, id int64, title, author string) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	b.Title = title
	b.Author = author
	if err := s.repo.Update(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Delete removes a book by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Search returns one page of books matching f.
func (s *Service) Search(ctx context.Context, f Filter, req page.Request) (page.Page[Book], error) {
	books, total, err := s.repo.Search(ctx, f, req)
	if err != nil {
		return page.Page[Book]{}, err
	}
	return page.New(books, total, req), nil
}
