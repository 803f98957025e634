package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Robin-Camp/movie-catalog/internal/config"
	httpserver "github.com/Robin-Camp/movie-catalog/internal/http"
	"github.com/Robin-Camp/movie-catalog/internal/ingest"
	"github.com/Robin-Camp/movie-catalog/internal/ratings"
	"github.com/Robin-Camp/movie-catalog/internal/repository"
	"github.com/Robin-Camp/movie-catalog/internal/store"
	"github.com/Robin-Camp/movie-catalog/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movie-catalog] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(dbCtx, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	catalog, err := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIToken,
		time.Duration(cfg.TMDBTimeoutSecs)*time.Second, cfg.TMDBRatePerSec, logger)
	if err != nil {
		log.Fatalf("init tmdb client: %v", err)
	}

	repo := repository.New(st)
	ingestor := ingest.New(catalog, repo.Genres, repo.Directors, logger)
	aggregator := ratings.New(repo.Movies, repo.Reviews, cfg.RatingQueueSize, logger)
	go aggregator.Run(ctx)

	server := httpserver.New(cfg, st, repo, ingestor, aggregator, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
