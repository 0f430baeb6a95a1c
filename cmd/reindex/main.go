package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"materia/internal/catalog"
	"materia/internal/config"
	"materia/internal/embedding"
	"materia/internal/storage"
)

// Bulk reindex CLI: recomputes every catalog embedding with a terminal
// progress bar, writing a pre-pass backup snapshot first. The API stays
// usable for a web-triggered reindex; this binary is for operators.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Keep slog output out of the progress bar's way.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

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

	ctx := context.Background()

	provider := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName,
		cfg.EmbeddingVectorSize, cfg.EmbeddingTimeout)
	if _, err := provider.Embed(ctx, "test"); err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}

	store := catalog.NewStore(storage.NewProductRepo(db), cfg.SnapshotDir)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	if store.Len() == 0 {
		fmt.Println("Catalog is empty, nothing to reindex.")
		return
	}
	fmt.Printf("Reindexing %d products with %s...\n", store.Len(), cfg.EmbeddingModelName)

	writer := catalog.NewWriter(store, provider, storage.NewAuditRepo(db))

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex

	result, err := writer.Reindex(ctx, func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	})
	if err != nil {
		log.Fatalf("Reindex failed: %v", err)
	}

	fmt.Printf("Reindexed %d products.\n", result.Count)
	fmt.Printf("Backup snapshot: %s\n", result.BackupPath)
}
