package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fieldreport/internal/domain"
	"fieldreport/internal/http/handlers"
	httpapi "fieldreport/internal/http/httpapi"
	"fieldreport/internal/infra"
	"fieldreport/internal/infra/geoip"
	"fieldreport/internal/middleware"
	"fieldreport/internal/service"
	"fieldreport/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx := context.Background()

	var submissions domain.SubmissionRepository
	db, err := service.OpenDatabase(ctx, cfg, logger)
	switch {
	case service.IsDisabled(err):
		logger.Info().Msg("DATABASE_URL not set, submission history disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer db.Close()
		submissions = db.Submissions
		if err := service.ApplyStoredSMTPPassword(ctx, cfg, db.Credentials); err != nil {
			logger.Warn().Err(err).Msg("stored smtp password unavailable")
		}
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	app := handlers.NewApp(service.NewPipeline(cfg, logger), store, submissions, logger)
	app.SMTPConfigured = cfg.SMTP.Configured()
	app.MaxBodyBytes = cfg.MaxBodyBytes

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.ReportLocale,
		CountryLookup:   lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("output_dir", store.BasePath()).
			Bool("smtp_configured", app.SMTPConfigured).
			Str("attach_photos", string(cfg.AttachPhotos)).
			Msg("report server listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
