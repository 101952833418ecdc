// Command reindex rebuilds the full-text search index from the
// relational store. The index is disposable: every search falls back
// to the database when it is missing, and this command restores full
// content search after a Redis wipe or schema change.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"helsejournal/internal/config"
	"helsejournal/internal/repository/postgres"
	"helsejournal/internal/search"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall time budget for the rebuild")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	index, err := search.New(search.Config{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to search index: %v", err)
	}
	defer index.Close()

	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("Failed to ensure index: %v", err)
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	docRepo := postgres.NewDocumentRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})

	docs, err := docRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}

	indexed, failed := 0, 0
	for _, meta := range docs {
		// The listing omits extracted text; load the full row.
		doc, err := docRepo.GetByID(ctx, meta.ID)
		if err != nil {
			logger.Error("load document", "document_id", meta.ID, "error", err)
			failed++
			continue
		}
		if err := index.IndexDocument(ctx, doc); err != nil {
			logger.Error("index document", "document_id", doc.ID, "error", err)
			failed++
			continue
		}
		indexed++
	}

	logger.Info("reindex complete", "indexed", indexed, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
