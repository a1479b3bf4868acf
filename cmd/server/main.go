package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/khushal-Taskar/Zoom/internal/adapters/http"
	wssignal "github.com/khushal-Taskar/Zoom/internal/adapters/signal"
	"github.com/khushal-Taskar/Zoom/internal/config"
	"github.com/khushal-Taskar/Zoom/internal/relay"
	"github.com/khushal-Taskar/Zoom/internal/users"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load(".env")

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	var repo users.Repository
	if cfg.DatabaseDSN != "" {
		pg, err := users.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		repo = pg
		log.Info().Msg("users backed by postgres")
	} else {
		repo = users.NewInMemoryRepository()
		log.Warn().Msg("no database dsn, users kept in memory")
	}
	userService := users.NewService(repo)

	registry := relay.NewRegistry()
	controller := wssignal.NewController(cfg.ReadLimit, cfg.PingPeriod)
	rly := relay.New(registry, controller)
	controller.Relay = rly

	r := router.SetupRouter(ctx, cfg, controller, userService)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
