package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youruser/pnlcard/internal/api"
	"github.com/youruser/pnlcard/internal/artifact"
	"github.com/youruser/pnlcard/internal/config"
	"github.com/youruser/pnlcard/internal/database"
	imagepkg "github.com/youruser/pnlcard/internal/image"
	"github.com/youruser/pnlcard/internal/logger"
	"github.com/youruser/pnlcard/internal/market"
	"github.com/youruser/pnlcard/internal/scheduler"
	"github.com/youruser/pnlcard/internal/settings"
	"github.com/youruser/pnlcard/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.Pretty})
	logger.SetGlobalLogger(log)

	db, err := database.Open(filepath.Join(cfg.DataDir, "settings.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	store := settings.NewRepository(db, log)
	if err := store.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	artifacts, err := artifact.NewManager(cfg.TempDir, cfg.ArtifactTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare artifact directory")
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.ReaperSchedule, artifact.NewReaperJob(artifacts, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule artifact reaper")
	}
	sched.Start()

	fonts, err := imagepkg.LoadFonts()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load fonts")
	}

	fetcher := util.NewHTTPFetcher(cfg.FetchTimeout)
	overlay := imagepkg.NewOverlayRenderer(fonts, fetcher, imagepkg.OverlayConfig{
		LogoURL:  orDefault(cfg.LogoURL, imagepkg.DefaultLogoURL),
		GlobeURL: orDefault(cfg.GlobeURL, imagepkg.DefaultGlobeURL),
		Caption:  cfg.FooterCaption,
	}, log)
	background := imagepkg.NewBackgroundResolver(fetcher, orDefault(cfg.StockBackground, imagepkg.DefaultStockBackground), log)
	generator := imagepkg.NewGenerator(background, overlay, fetcher, artifacts, log)

	resolver := market.NewResolver(market.NewClient(cfg.KalshiBaseURL, cfg.FetchTimeout, log), log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))
	api.RegisterRoutes(router, api.NewHandler(generator, resolver, store, artifacts, log))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("artifacts", artifacts.Dir()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()
	artifacts.Close()
	log.Info().Msg("Server stopped")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
