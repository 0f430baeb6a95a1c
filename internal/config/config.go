package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is resolved once at startup and injected into every component;
// nothing re-reads the environment mid-session.
type Config struct {
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingVectorSize int
	EmbeddingTimeout    time.Duration
	DBPath              string
	SnapshotDir         string
	ProjectsBackend     string // "file" or "sqlite"
	ProjectsFilePath    string
	APIPort             string
	LogLevel            slog.Level
	LogFormat           string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up toward the project root looking for a .env file.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		DBPath:             getEnv("DB_PATH", "./data/materia.db"),
		SnapshotDir:        getEnv("SNAPSHOT_DIR", "./data/catalog_versions"),
		ProjectsBackend:    getEnv("PROJECTS_BACKEND", "sqlite"),
		ProjectsFilePath:   getEnv("PROJECTS_FILE_PATH", "./data/projects.db"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// Parse EMBEDDING_VECTOR_SIZE. This must match the output dimension of the
	// embedding model; all-MiniLM-L6-v2 produces 384-dimensional vectors.
	// Every stored embedding and every query vector is validated against it.
	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "384")
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	// Bounded timeout for embedding requests so a hung model server cannot
	// stall an Add/Edit/Reindex pass indefinitely.
	timeoutStr := getEnv("EMBEDDING_TIMEOUT_SECONDS", "30")
	timeoutSec, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSec <= 0 {
		return nil, fmt.Errorf("EMBEDDING_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.EmbeddingTimeout = time.Duration(timeoutSec) * time.Second

	switch cfg.ProjectsBackend {
	case "file", "sqlite":
	default:
		return nil, fmt.Errorf("PROJECTS_BACKEND must be \"file\" or \"sqlite\", got %q", cfg.ProjectsBackend)
	}

	switch level := getEnv("LOG_LEVEL", "info"); level {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", level)
	}

	// Create the data and snapshot directories up front.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.SnapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
