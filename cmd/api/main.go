package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"materia/internal/catalog"
	"materia/internal/config"
	"materia/internal/embedding"
	"materia/internal/http"
	"materia/internal/projects"
	"materia/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	ctx := context.Background()

	// Validate the embedding client vector size (fail-fast)
	provider := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName,
		cfg.EmbeddingVectorSize, cfg.EmbeddingTimeout)
	if _, err := provider.Embed(ctx, "test"); err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	slog.Info("Embedding client validated",
		"model", cfg.EmbeddingModelName, "vector_size", cfg.EmbeddingVectorSize)

	// Load the catalog into memory
	catalogStore := catalog.NewStore(storage.NewProductRepo(db), cfg.SnapshotDir)
	if err := catalogStore.Load(ctx); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	slog.Info("Catalog loaded", "records", catalogStore.Len(), "snapshot_dir", cfg.SnapshotDir)

	writer := catalog.NewWriter(catalogStore, provider, storage.NewAuditRepo(db))

	// Select the project store backend
	var projectStore projects.Store
	switch cfg.ProjectsBackend {
	case "file":
		boltStore, err := projects.NewBoltStore(cfg.ProjectsFilePath)
		if err != nil {
			log.Fatalf("Failed to open projects file: %v", err)
		}
		defer func() {
			_ = boltStore.Close()
		}()
		projectStore = boltStore
	case "sqlite":
		projectStore = storage.NewProjectRepo(db)
	}
	slog.Info("Project store ready", "backend", cfg.ProjectsBackend)

	router := http.NewRouter(&http.Deps{
		DB:       db,
		Catalog:  catalogStore,
		Writer:   writer,
		Provider: provider,
		Projects: projectStore,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
