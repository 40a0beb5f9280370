package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/avasant/casepipe/internal/ai"
	"github.com/avasant/casepipe/internal/api"
	"github.com/avasant/casepipe/internal/chunker"
	"github.com/avasant/casepipe/internal/config"
	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/ocr"
	"github.com/avasant/casepipe/internal/pipeline"
	"github.com/avasant/casepipe/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Object storage.
	objects, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
	if err != nil {
		log.Error("gcs store", "error", err)
		os.Exit(1)
	}
	defer objects.Close()

	// Job state: redis when configured, in-memory otherwise.
	var states job.StateStore
	if cfg.RedisAddr != "" {
		states = job.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		log.Warn("REDIS_ADDR not set, job state is in-memory only")
		states = job.NewMemoryStore()
	}

	// Page text recognition.
	extractor, err := ocr.NewVisionExtractor(ctx)
	if err != nil {
		log.Error("vision extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ChatModel)

	templates, err := fieldgroup.Load(cfg.TemplatesPath)
	if err != nil {
		log.Error("load templates", "error", err)
		os.Exit(1)
	}

	bus := pipeline.NewBus(log)
	pipe := pipeline.New(objects, states, ocr.FitzRasterizer{}, extractor,
		aiClient, aiClient, templates, bus, log, pipeline.Config{
			MainChunk:       chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
			TranscriptChunk: chunker.Config{Size: cfg.TranscriptChunkSize, Overlap: cfg.TranscriptChunkOverlap},
			TopK:            cfg.TopK,
			PageWorkers:     cfg.PageWorkers,
			DocWorkers:      cfg.DocWorkers,
		})
	pipe.RegisterStages(bus)

	srv := api.NewServer(pipe, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: stop accepting, then drain in-flight stages.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		bus.Wait()
		cancel()
	}()

	log.Info("starting casepipe", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
