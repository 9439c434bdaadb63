package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/course-notes/internal/api"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/config"
	"github.com/tendant/course-notes/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repos, err := cfg.BuildRepositories(ctx)
	if err != nil {
		slog.Error("Failed to initialize repositories", "err", err)
		os.Exit(1)
	}

	store, err := cfg.BuildStorage()
	if err != nil {
		slog.Error("Failed to initialize storage backend", "err", err)
		os.Exit(1)
	}

	tokens, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		slog.Error("Failed to initialize token manager", "err", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(repos.Users, tokens)
	notesService := service.NewNotesService(repos.Units, repos.Subtopics, repos.PDFs, store)
	uploadService := service.NewUploadService(store)

	server := api.NewServer(tokens, authService, notesService, uploadService)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: server.Routes(),
	}

	go func() {
		slog.Info("Course notes server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
