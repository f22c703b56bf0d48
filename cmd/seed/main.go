package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/loan"
)

var (
	titles  = []string{"Dom Casmurro", "Memórias Póstumas", "O Cortiço", "Iracema", "Vidas Secas", "Capitães da Areia", "Grande Sertão", "A Hora da Estrela"}
	authors = []string{"Machado de Assis", "Aluísio Azevedo", "José de Alencar", "Graciliano Ramos", "Jorge Amado", "Guimarães Rosa", "Clarice Lispector"}
	names   = []string{"Fulano", "Ciclano", "Beltrano", "Maria", "João"}
)

func main() {
	var (
		books = flag.Int("books", 50, "Number of books to create")
		loans = flag.Int("loans", 20, "Number of loans to open")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		fatal("connect to database", err)
	}
	defer pool.Close()

	bookService := book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout))
	loanService := loan.NewService(loan.NewPostgresRepo(pool, cfg.DBTimeout), bookService)

	created, err := seedBooks(ctx, bookService, *books)
	if err != nil {
		fatal("seed books", err)
	}
	slog.Info("books created", slog.Int("count", len(created)))

	opened := seedLoans(ctx, loanService, created, *loans)
	slog.Info("loans opened", slog.Int("count", opened))
}

func seedBooks(ctx context.Context, svc *book.Service, count int) ([]book.Book, error) {
	prefix := time.Now().Format("060102150405")
	out := make([]book.Book, 0, count)
	for i := 0; i < count; i++ {
		title := fmt.Sprintf("%s %d", titles[rand.Intn(len(titles))], i+1)
		isbn := fmt.Sprintf("978-%s-%04d", prefix, i+1)
		b, err := svc.Create(ctx, title, authors[rand.Intn(len(authors))], isbn)
		if errors.Is(err, book.ErrDuplicateISBN) {
			continue
		}
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}

func seedLoans(ctx context.Context, svc *loan.Service, books []book.Book, count int) int {
	opened := 0
	for _, i := range rand.Perm(len(books)) {
		if opened == count {
			break
		}
		name := names[rand.Intn(len(names))]
		email := fmt.Sprintf("%s@example.com", name)
		if _, err := svc.Checkout(ctx, books[i].ISBN, name, email); err != nil {
			slog.Warn("skip loan", slog.String("isbn", books[i].ISBN), slog.Any("error", err))
			continue
		}
		opened++
	}
	return opened
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
