package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	RAG       RAGConfig
	Ingest    IngestConfig
	Retention RetentionConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	OpenAIKey        string
	GroqKey          string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	FallbackProvider string
	ChatModel        string
	EmbeddingModel   string
	ModerationMode   string // "keyword" or "llm"
	ModerationModel  string
	MaxRetries       int
}

type RAGConfig struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

type IngestConfig struct {
	UploadDir string
}

type RetentionConfig struct {
	Window        time.Duration
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set env vars directly.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	topK, err := getEnvInt("RAG_TOP_K", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_TOP_K: %w", err)
	}

	chunkSize, err := getEnvInt("RAG_CHUNK_SIZE", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_CHUNK_SIZE: %w", err)
	}

	chunkOverlap, err := getEnvInt("RAG_CHUNK_OVERLAP", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid RAG_CHUNK_OVERLAP: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	retentionWindow, err := getEnvDuration("RETENTION_WINDOW", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_WINDOW: %w", err)
	}

	sweepInterval, err := getEnvDuration("RETENTION_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_SWEEP_INTERVAL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			GroqKey:          getEnv("GROQ_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "groq"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			ChatModel:        getEnv("LLM_CHAT_MODEL", "llama-3.3-70b-versatile"),
			EmbeddingModel:   getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			ModerationMode:   getEnv("MODERATION_MODE", "llm"),
			ModerationModel:  getEnv("MODERATION_MODEL", "llama-guard-3-8b"),
			MaxRetries:       maxRetries,
		},
		RAG: RAGConfig{
			TopK:         topK,
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
		},
		Ingest: IngestConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		},
		Retention: RetentionConfig{
			Window:        retentionWindow,
			SweepInterval: sweepInterval,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
