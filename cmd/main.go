package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"voice-booking-capture-service/internal/app"
	"voice-booking-capture-service/internal/booking"
	"voice-booking-capture-service/internal/config"
	"voice-booking-capture-service/internal/events"
	"voice-booking-capture-service/internal/httpapi"
	"voice-booking-capture-service/internal/lexicon"
	"voice-booking-capture-service/internal/observability"
	"voice-booking-capture-service/internal/observability/metrics"
	"voice-booking-capture-service/internal/service/capture"
	"voice-booking-capture-service/internal/service/session"
	sttfactory "voice-booking-capture-service/internal/service/stt/factory"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("startup failed")
	}
	logger := application.Logger

	// Lexicon: built-in tables, optionally extended from disk.
	lex := lexicon.Default()
	if cfg.Capture.LexiconDir != "" {
		if err := lex.LoadDir(cfg.Capture.LexiconDir); err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.Capture.LexiconDir).Msg("lexicon load failed")
		}
	}

	// Speech recognizer factory, selected once.
	factory, cleanup, err := sttfactory.New(sttfactory.Options{
		Provider:         cfg.STT.Provider,
		Environment:      cfg.Service.Environment,
		LanguageCode:     cfg.STT.LanguageCode,
		SampleRateHz:     cfg.STT.SampleRateHz,
		WhisperModelPath: cfg.STT.WhisperModelPath,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.STT.Provider).Msg("recognizer selection failed")
	}
	defer cleanup()

	publisher := events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicCapture: cfg.Kafka.TopicCapture,
		TopicOutcome: cfg.Kafka.TopicOutcome,
		Principal:    cfg.Kafka.Principal,
	})
	defer publisher.Close()

	manager := session.NewManager(
		session.ManagerConfig{
			Controller: session.Config{
				MaxDuration:      cfg.Capture.MaxDuration,
				Locale:           cfg.Capture.Locale,
				RecheckThreshold: cfg.Heuristics.RecheckThreshold,
			},
			VenueID:      cfg.Service.VenueID,
			SpoolDir:     cfg.Capture.SpoolDir,
			SampleRateHz: cfg.STT.SampleRateHz,
			Source:       cfg.Capture.Source,
		},
		lex,
		factory,
		capture.StaticPermission{Granted: cfg.Capture.MicPermission},
		logger,
	)

	submitter := booking.NewSubmitter(booking.SubmitterConfig{
		BaseURL:  cfg.Backend.BaseURL,
		Token:    cfg.Backend.Token,
		Timezone: cfg.Backend.Timezone,
		Metadata: booking.Metadata{
			StaffID:    cfg.Service.StaffID,
			VenueID:    cfg.Service.VenueID,
			AppVersion: cfg.Service.AppVersion,
			Platform:   "daemon",
		},
	}, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Manager:   manager,
		Submitter: submitter,
		Bookings:  booking.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token),
		Publisher: publisher,
		Metrics:   metrics.DefaultMetrics,
		VenueID:   cfg.Service.VenueID,
		StaffID:   cfg.Service.StaffID,
		Logger:    logger,
	})

	apiServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	obsServer := observability.NewServer(":" + cfg.Service.MetricsPort)
	obsServer.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", apiServer.Addr).Msg("control API listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		logger.Info().Msg("shutting down")
		manager.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("observability server shutdown failed")
		}
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		application.Shutdown()
		os.Exit(1)
	}
	application.Shutdown()
}
