package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/data/db"
	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
	"github.com/owenshen0907/NihonGO/internal/platform/rediscache"
	"github.com/owenshen0907/NihonGO/internal/services"
)

// Backfills the embedding column of the grammar corpus for rows imported
// without one. Safe to re-run; already-embedded rows are never touched.
func main() {
	var batchSize int
	var concurrency int
	var dryRun bool
	flag.IntVar(&batchSize, "batch", 100, "rows fetched per page")
	flag.IntVar(&concurrency, "concurrency", 4, "parallel embedding requests")
	flag.BoolVar(&dryRun, "dry-run", false, "list rows without embedding them")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	grammarRepo := repos.NewGrammarRepo(postgresService.DB(), log)

	embeddingCache := rediscache.NewEmbeddingCache(log)
	defer embeddingCache.Close()
	embedder := services.NewCachedEmbedder(openai.NewClient(log), cfg.Profiles.Embedding, embeddingCache)

	ctx := context.Background()
	var updated, failed atomic.Int64

	for {
		rows, err := grammarRepo.ListMissingEmbeddings(ctx, nil, batchSize)
		if err != nil {
			log.Error("Could not list rows missing embeddings", "error", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			break
		}
		log.Info("Backfilling batch", "rows", len(rows))

		if dryRun {
			for _, row := range rows {
				fmt.Printf("%s\t%s\n", row.ID, row.Formula)
			}
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, row := range rows {
			row := row
			g.Go(func() error {
				vec, err := embedder.Embed(gctx, row.EmbeddingInput())
				if err != nil {
					failed.Add(1)
					log.Warn("Embedding failed", "id", row.ID, "error", err)
					return err
				}
				if err := grammarRepo.UpdateEmbedding(gctx, nil, row.ID, pgvector.NewVector(vec)); err != nil {
					failed.Add(1)
					log.Warn("Embedding update failed", "id", row.ID, "error", err)
					return err
				}
				updated.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Error("Batch aborted", "updated", updated.Load(), "failed", failed.Load(), "error", err)
			os.Exit(1)
		}
	}

	log.Info("Backfill complete", "updated", updated.Load(), "failed", failed.Load())
}
