package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/loan"
	"libraryapi/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	noticeAt, err := notify.ParseTimeOfDay(cfg.OverdueNoticeAt)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DBDSN)
	if err != nil {
		slog.Error("cannot open database", slog.String("dsn", redactDSN(cfg.DBDSN)), slog.Any("error", err))
		os.Exit(1)
	}
	defer dbPool.Close()

	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.DBTimeout))
	loanService := loan.NewService(loan.NewPostgresRepo(dbPool, cfg.DBTimeout), bookService)

	runRepository := notify.NewPostgresRepo(dbPool, cfg.DBTimeout)
	noticeJob := notify.NewJob(loanService, newMailer(cfg), runRepository, cfg.LateLoansMessage, cfg.OverdueDays)

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	defer rateLimiter.Stop()

	router := newRouter(handlers{
		books:   book.NewHTTPHandler(bookService),
		loans:   loan.NewHTTPHandler(loanService),
		notices: notify.NewHTTPHandler(noticeJob, runRepository, cfg.InternalSecret),
	}, dbPool)

	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: withMiddleware(router, middlewareConfig{
			corsOrigins:  cfg.CORSAllowedOrigins,
			enableHSTS:   cfg.EnableHSTS,
			maxBodyBytes: cfg.MaxBodyBytes,
			rateLimiter:  rateLimiter,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		notify.NewScheduler(noticeJob, noticeAt).Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serverErr:
		slog.Error("server error", slog.Any("error", err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
	<-schedulerDone
	slog.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.Development() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func newMailer(cfg config.Config) notify.Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, overdue notices will only be logged")
		return notify.LogMailer{}
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("database connection OK")
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
