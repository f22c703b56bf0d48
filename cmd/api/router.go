package main

import (
	"context"
	"net/http"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
	"libraryapi/internal/loan"
	"libraryapi/internal/notify"
)

// pinger reports database readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	books   *book.HTTPHandler
	loans   *loan.HTTPHandler
	notices *notify.HTTPHandler
}

func newRouter(h handlers, db pinger) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /api/books", h.books.Create)
	router.HandleFunc("GET /api/books", h.books.List)
	router.HandleFunc("GET /api/books/{id}", h.books.Get)
	router.HandleFunc("PUT /api/books/{id}", h.books.Update)
	router.HandleFunc("DELETE /api/books/{id}", h.books.Delete)
	router.HandleFunc("GET /api/books/{id}/loans", h.loans.ListByBook)

	router.HandleFunc("POST /api/loans", h.loans.Create)
	router.HandleFunc("GET /api/loans", h.loans.List)
	router.HandleFunc("PATCH /api/loans/{id}", h.loans.Return)

	router.HandleFunc("POST /internal/jobs/overdue-notices", h.notices.Trigger)
	router.HandleFunc("GET /internal/jobs/overdue-notices", h.notices.List)

	return router
}

type middlewareConfig struct {
	corsOrigins  []string
	enableHSTS   bool
	maxBodyBytes int64
	rateLimiter  *httpx.RateLimitMiddleware
}

// withMiddleware wraps router; the first middleware is the outermost.
func withMiddleware(router http.Handler, cfg middlewareConfig) http.Handler {
	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.enableHSTS),
		httpx.CORSMiddleware(cfg.corsOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.maxBodyBytes),
		cfg.rateLimiter.Middleware,
	)
}
