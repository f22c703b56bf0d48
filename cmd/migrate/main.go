package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"libraryapi/internal/config"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		fatal("connect to database", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := run(db, *command, *name, migrationsDir()); err != nil {
		fatal("migrate "+*command, err)
	}
}

func run(db *sql.DB, command, name, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return err
		}
		slog.Info("migrations applied", slog.String("dir", dir))
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return err
		}
		slog.Info("migration rolled back", slog.String("dir", dir))
	case "status":
		return goose.Status(db, dir)
	case "version":
		return goose.Version(db, dir)
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return err
		}
		slog.Info("migration created", slog.String("name", name))
	default:
		return fmt.Errorf("unknown command %q: use up, down, status, version, create", command)
	}
	return nil
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
