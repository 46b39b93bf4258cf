package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Jukebox/internal/adapters/http"
	"github.com/dkeye/Jukebox/internal/adapters/lavalink"
	"github.com/dkeye/Jukebox/internal/adapters/panelws"
	"github.com/dkeye/Jukebox/internal/app"
	"github.com/dkeye/Jukebox/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	node := lavalink.NewNode(cfg.BackendHost, cfg.BackendPassword)
	go node.Listen(ctx)

	store := app.NewSessionStore(node)
	hub := panelws.NewHub()
	panels := app.NewPanelSequencer(store, hub)
	ctrl := app.NewController(store, panels, app.Options{
		DefaultVolume: cfg.DefaultVolume,
		IdleGrace:     cfg.IdleGrace,
		SeekStep:      cfg.SeekStep,
		VolumeStep:    cfg.VolumeStep,
		PageSize:      cfg.PageSize,
		DefaultSource: cfg.DefaultSource,
	})

	r := router.SetupRouter(ctx, cfg, ctrl, hub)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Jukebox server started")
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
