package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/backoffice/internal/config"
	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	backofficeHttp "github.com/MrJamesThe3rd/backoffice/internal/http"
	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
	recordStore "github.com/MrJamesThe3rd/backoffice/internal/record/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.Secret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	formatter, err := cfg.Formatter()
	if err != nil {
		slog.Error("invalid display settings", "locale", cfg.Display.Locale, "currency", cfg.Display.Currency, "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	router := backofficeHttp.New(auth.NewVerifier(cfg.Auth.Secret), cfg.Server.AllowedOrigins, backofficeHttp.Services{
		Records: record.NewService(recordStore.New(db)),
		Imports: importer.NewService(),
		Exports: export.NewService(formatter),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "app", cfg.App.Name)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
