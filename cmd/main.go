// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pkt.systems/pslog"

	"github.com/confops/signup-sheets/internal/book"
	"github.com/confops/signup-sheets/internal/config"
	"github.com/confops/signup-sheets/internal/database"
	"github.com/confops/signup-sheets/internal/handler"
	"github.com/confops/signup-sheets/internal/service"
)

func main() {
	ctx := context.Background()
	logger := pslog.NewStructured(os.Stderr).With("app", "signupd")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config.load", "error", err)
		os.Exit(1)
	}

	// ── 1. Pick the book backend ─────────────────────────────────────────
	var sheets book.Book
	switch cfg.Store {
	case "postgres":
		pool, err := database.NewPool(ctx, cfg.DB, logger)
		if err != nil {
			logger.Error("db.connect", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := book.NewPostgresBook(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("db.schema", "error", err)
			os.Exit(1)
		}
		sheets = pg
		logger.Info("store.selected", "store", "postgres", "host", cfg.DB.Host)
	default:
		sheets = book.NewMemoryBook()
		logger.Info("store.selected", "store", "memory")
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	svc := service.NewSignupService(sheets, logger)
	h := handler.NewSheetHandler(svc)

	// ── 3. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.RequestLogger(logger))

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSheet)
		r.Get("/", h.ListSheets)
		r.Get("/{sessionID}", h.GetSheet)
		r.Post("/{sessionID}/signups/{attendeeID}", h.SignUp)
		r.Delete("/{sessionID}/signups/{attendeeID}", h.CancelSignUp)
		r.Get("/{sessionID}/signups", h.ListSignups)
		r.Get("/{sessionID}/full", h.IsFull)
		r.Get("/{sessionID}/closed", h.IsClosed)
		r.Post("/{sessionID}/closed", h.Close)
	})

	// ── 4. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server.listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server.shutdown.begin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown.failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server.shutdown.done")
}
