package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/speech-insights/internal/cleanup"
	"github.com/codebuildervaibhav/speech-insights/internal/config"
	"github.com/codebuildervaibhav/speech-insights/internal/handlers"
	"github.com/codebuildervaibhav/speech-insights/internal/logging"
	"github.com/codebuildervaibhav/speech-insights/internal/observe"
	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/storage"
	"github.com/codebuildervaibhav/speech-insights/internal/transcription"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "speech-insights",
		Short:        "Transcription server with speech delivery analytics",
		Version:      handlers.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the YAML config file")

	cmd.AddCommand(newAnalyzeCmd())
	return cmd
}

func runServer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logBuffer := logging.NewBuffer(cfg.Logging.BufferLines)
	logSink := logging.Setup(cfg.Logging.Level, logBuffer)

	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Info().Msg("Initializing components")

	if cfg.Metrics.Enabled {
		shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "speech-insights",
			ServiceVersion: handlers.Version,
		})
		if err != nil {
			return fmt.Errorf("failed to initialise metrics: %w", err)
		}
		defer shutdownMetrics(context.Background())
	}
	metrics := observe.DefaultMetrics()

	transcriber := transcription.NewWhisperTranscriber(
		cfg.Whisper.Model,
		cfg.Whisper.ModelPath,
		cfg.Whisper.Language,
		cfg.Storage.TempDir,
		cfg.Whisper.Threads,
	)
	localStorage := storage.NewLocalStorage(cfg.Storage.OutputDir, cfg.Whisper.Model)

	// Google Drive is optional; without credentials transcripts stay local
	var uploader queue.Uploader
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); cfg.GoogleDrive.CredentialsFile != "" && err == nil {
		driveClient, err := storage.NewDriveClient(ctx,
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
			cfg.Whisper.Model,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Google Drive not available, transcripts will only be saved locally")
		} else {
			uploader = driveClient
			log.Info().Str("folder", cfg.GoogleDrive.FolderName).Msg("Google Drive integration enabled")
		}
	} else {
		log.Info().Msg("Google Drive credentials not found, saving locally only")
	}

	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	workerPool := queue.NewWorkerPool(queue.PoolConfig{
		Workers:    cfg.Workers.Count,
		QueueSize:  cfg.Workers.QueueSize,
		TempDir:    cfg.Storage.TempDir,
		Diarize:    cfg.Diarization.Enabled,
		DiarizeGap: time.Duration(cfg.Diarization.GapThresholdMs) * time.Millisecond,
		Metrics:    metrics,
	}, transcriber, localStorage, uploader, db)
	workerPool.Start()

	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
		workerPool,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Limits.MaxFileSizeMB * 1024 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: logSink}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	youtube := handlers.NewYouTubeHandler(workerPool, cfg.Storage.TempDir)
	routes := handlers.Routes{
		Upload:      handlers.NewUploadHandler(workerPool, cfg.Storage.TempDir, cfg.Limits.MaxFileSizeMB),
		GDrive:      handlers.NewGDriveHandler(workerPool, cfg.Storage.TempDir, cfg.Limits.MaxFileSizeMB),
		YouTube:     youtube,
		Stream:      handlers.NewStreamHandler(workerPool, cfg.Storage.TempDir, cfg.Limits.MaxFileSizeMB),
		Analyze:     handlers.NewAnalyzeHandler(metrics, cfg.Limits.MaxAnalyzeWords),
		Transcripts: handlers.NewTranscriptsHandler(db),
		Jobs:        handlers.NewJobsHandler(workerPool, youtube),
		Logs:        logBuffer,
	}
	if cfg.Metrics.Enabled {
		routes.MetricsPath = cfg.Metrics.Path
		routes.MetricsHandler = observe.Handler()
	}
	routes.Register(app)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Server starting")
	log.Info().Msg("Endpoints: POST /upload /gdrive /youtube /analyze, GET /ws/stream /transcripts " +
		"/transcripts/:id/text /transcripts/:id/metrics /jobs/:id /logs /health")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down gracefully")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := workerPool.Stop(stopCtx); err != nil {
		log.Warn().Err(err).Msg("Worker pool did not drain in time, running jobs were cancelled")
	}
	return nil
}
