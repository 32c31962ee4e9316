package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"albert/internal/bgremove"
	"albert/internal/config"
	"albert/internal/imagegen"
	"albert/internal/pipeline"
	"albert/internal/recorder"
	"albert/internal/research"
	"albert/internal/server"
	"albert/internal/telemetry"
	"albert/internal/textgen"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer("albert", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	callTimeout := 60 * time.Second
	if cfg.Pipeline.CallTimeout != "" {
		callTimeout, err = time.ParseDuration(cfg.Pipeline.CallTimeout)
		if err != nil {
			log.Fatalf("Invalid pipeline.call_timeout: %v", err)
		}
	}
	httpClient := &http.Client{Timeout: callTimeout}

	var store recorder.Store
	if cfg.Storage.Path != "" {
		sqliteStore, err := recorder.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open interaction store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("interaction log enabled", slog.String("path", cfg.Storage.Path))
	} else {
		store = recorder.NewMemoryStore()
		logger.Info("interaction log kept in memory")
	}
	rec := recorder.New(store, recorder.WithLogger(logger))

	researchOpts := []research.ClientOption{research.WithHTTPClient(httpClient)}
	if cfg.Research.BaseURL != "" {
		researchOpts = append(researchOpts, research.WithBaseURL(cfg.Research.BaseURL))
	}
	if cfg.Research.Model != "" {
		researchOpts = append(researchOpts, research.WithModel(cfg.Research.Model))
	}
	researchClient := research.NewClient(cfg.Research.APIKey, researchOpts...)

	textgenOpts := []textgen.ClientOption{textgen.WithHTTPClient(httpClient)}
	if cfg.TextGen.BaseURL != "" {
		textgenOpts = append(textgenOpts, textgen.WithBaseURL(cfg.TextGen.BaseURL))
	}
	if cfg.TextGen.Model != "" {
		textgenOpts = append(textgenOpts, textgen.WithModel(cfg.TextGen.Model))
	}
	textgenClient := textgen.NewClient(cfg.TextGen.APIKey, textgenOpts...)

	imagegenOpts := []imagegen.ClientOption{imagegen.WithHTTPClient(httpClient)}
	if cfg.ImageGen.BaseURL != "" {
		imagegenOpts = append(imagegenOpts, imagegen.WithBaseURL(cfg.ImageGen.BaseURL))
	}
	if cfg.ImageGen.Model != "" {
		imagegenOpts = append(imagegenOpts, imagegen.WithModel(cfg.ImageGen.Model))
	}
	imagegenClient := imagegen.NewClient(cfg.ImageGen.APIKey, imagegenOpts...)

	removerOpts := []bgremove.RemoverOption{bgremove.WithHTTPClient(httpClient)}
	if cfg.Segment.BaseURL != "" {
		removerOpts = append(removerOpts, bgremove.WithBaseURL(cfg.Segment.BaseURL))
	}
	remover := bgremove.NewRemover(cfg.Segment.APIKey, removerOpts...)

	orchestrator := pipeline.NewOrchestrator(researchClient, textgenClient, imagegenClient, rec,
		pipeline.WithLogger(logger))
	answers := pipeline.NewAnswerGenerator(researchClient, rec)

	srv := server.New(cfg.Server.Port, logger)
	handler := server.NewHandler(orchestrator, answers, remover, rec, logger)
	handler.Register(srv.Router)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
