package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// OpenAI
	OpenAIAPIKey string
	EmbedModel   string
	ChatModel    string

	// Object storage
	GCSBucket string

	// Job state; empty address falls back to the in-memory store
	RedisAddr string

	// Extraction templates; empty path uses the built-in set
	TemplatesPath string

	// Chunking
	ChunkSize              int
	ChunkOverlap           int
	TranscriptChunkSize    int
	TranscriptChunkOverlap int

	// Retrieval
	TopK int

	// Fan-out
	PageWorkers int
	DocWorkers  int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CASEPIPE_API_KEY"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		EmbedModel:   envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		ChatModel:    envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		RedisAddr: os.Getenv("REDIS_ADDR"),

		TemplatesPath: os.Getenv("TEMPLATES_PATH"),

		ChunkSize:              envInt("CHUNK_SIZE", 1200),
		ChunkOverlap:           envInt("CHUNK_OVERLAP", 50),
		TranscriptChunkSize:    envInt("TRANSCRIPT_CHUNK_SIZE", 1200),
		TranscriptChunkOverlap: envInt("TRANSCRIPT_CHUNK_OVERLAP", 50),

		TopK: envInt("TOP_K", 18),

		PageWorkers: envInt("PAGE_WORKERS", 8),
		DocWorkers:  envInt("DOC_WORKERS", 5),
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 50
	}
	if cfg.TranscriptChunkSize <= 0 {
		cfg.TranscriptChunkSize = 1200
	}
	if cfg.TranscriptChunkOverlap < 0 || cfg.TranscriptChunkOverlap >= cfg.TranscriptChunkSize {
		cfg.TranscriptChunkOverlap = 50
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 18
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 8
	}
	if cfg.DocWorkers <= 0 {
		cfg.DocWorkers = 5
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CASEPIPE_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
