package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"homebudget/internal/amqp"
	"homebudget/internal/archive"
	"homebudget/internal/backend"
	"homebudget/internal/config"
	"homebudget/internal/docstore"
	sheetsexport "homebudget/internal/export/sheets"
	gsheet "homebudget/internal/export/sheets/google"
	apphttp "homebudget/internal/http"
	applog "homebudget/internal/log"
	"homebudget/internal/mutate"
	"homebudget/internal/store"
	"homebudget/internal/syncengine"
	"homebudget/internal/voice"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting homebudget", applog.FieldOperation, applog.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	docs, err := backend.Open(ctx, backendCfg, logger)
	if err != nil {
		logger.Error("Failed to open document store",
			applog.FieldBackend, cfg.DocStoreBackend, applog.FieldError, err)
		os.Exit(1)
	}
	defer func() { _ = docs.Close(context.Background()) }()

	paths := docstore.Paths{AppID: cfg.AppID, UserID: cfg.UserID}
	st := store.New()
	engine := syncengine.New(docs, st, paths, logger)
	engine.OnFatal(func(err error) {
		logger.Error("Fatal session error", applog.FieldError, err)
		stop()
	})

	archiveMgr := archive.NewManager(docs, st, engine, paths, logger)
	mutator := mutate.NewService(st, engine, logger)

	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewClient(ctx, cfg.GoogleSpreadsheetID, gsheet.Auth{
			ClientFile: cfg.GoogleOAuthClientFile,
			ClientJSON: cfg.GoogleOAuthClientJSON,
			TokenFile:  cfg.GoogleOAuthTokenFile,
			TokenJSON:  cfg.GoogleOAuthTokenJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		archiveMgr.SetExporter(sheetsexport.NewExporter(sheetsClient, cfg.GoogleSheetName, logger))
		logger.Info("Archive export enabled", applog.FieldSpreadsheet, cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Archive export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	if err := engine.Start(ctx); err != nil {
		logger.Error("Failed to start session", applog.FieldError, err)
		os.Exit(1)
	}
	defer engine.Dispose()

	var voiceWorker *voice.Worker
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		voiceWorker = voice.NewWorker(amqpClient, mutator, voice.DefaultKeywords(), logger)
		if err := voiceWorker.Start(ctx); err != nil {
			logger.Error("Failed to start voice worker", applog.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Voice ingestion disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, engine, archiveMgr, mutator, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if voiceWorker != nil {
			if err := voiceWorker.Stop(shutdownCtx); err != nil {
				logger.Warn("Voice worker shutdown error", applog.FieldError, err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
