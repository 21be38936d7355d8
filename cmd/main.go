package main

import (
	"context"
	"fmt"
	"os"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/data/db"
	"github.com/owenshen0907/NihonGO/internal/data/repos"
	httpserver "github.com/owenshen0907/NihonGO/internal/http"
	httpH "github.com/owenshen0907/NihonGO/internal/http/handlers"
	httpMW "github.com/owenshen0907/NihonGO/internal/http/middleware"
	"github.com/owenshen0907/NihonGO/internal/observability"
	"github.com/owenshen0907/NihonGO/internal/platform/casdoor"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
	"github.com/owenshen0907/NihonGO/internal/platform/rediscache"
	"github.com/owenshen0907/NihonGO/internal/resolve"
	"github.com/owenshen0907/NihonGO/internal/services"
)

func main() {
	// Logger
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

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownTracing, err := observability.SetupTracing(log)
	if err != nil {
		log.Warn("Tracing init failed", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()
	if err := db.AutoMigrateAll(thePG); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	wordRepo := repos.NewWordRepo(thePG, log)
	grammarRepo := repos.NewGrammarRepo(thePG, log)
	wordReportRepo := repos.NewWordReportRepo(thePG, log)
	grammarReportRepo := repos.NewGrammarReportRepo(thePG, log)
	studyLogRepo := repos.NewStudyLogRepo(thePG, log)
	noteRepo := repos.NewNoteRepo(thePG, log)

	// Upstream clients
	log.Info("Setting up upstream clients from main...")
	openaiClient := openai.NewClient(log)
	casdoorClient := casdoor.NewClient(log, cfg.Casdoor)
	embeddingCache := rediscache.NewEmbeddingCache(log)
	defer embeddingCache.Close()

	// Resolution
	embedder := services.NewCachedEmbedder(openaiClient, cfg.Profiles.Embedding, embeddingCache)
	resolver := resolve.NewResolver(
		embedder,
		services.NewGrammarCorpus(grammarRepo),
		services.NewGrammarLedger(grammarReportRepo),
		resolve.Config{
			Threshold:    cfg.Resolution.SimilarityThreshold,
			TopK:         cfg.Resolution.TopK,
			EmbedTimeout: cfg.EmbedTimeout(),
		},
		log,
	)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(log, casdoorClient, userRepo, cfg.JWTSecret, cfg.SessionTTL())
	chatService := services.NewChatService(log, openaiClient, cfg.Profiles.Chat)
	notesService := services.NewNotesService(log, openaiClient, cfg.Profiles.NoteGeneration, resolver, wordRepo, wordReportRepo, grammarReportRepo)
	studyService := services.NewStudyService(log, studyLogRepo, wordReportRepo, grammarReportRepo)
	extensionService := services.NewExtensionService(log, openaiClient, cfg.Profiles.WordExtension, cfg.Profiles.GrammarExtension, wordRepo, grammarRepo, wordReportRepo, grammarReportRepo)
	commonNotesService := services.NewCommonNotesService(log, noteRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := httpH.NewHealthHandler()
	authHandler := httpH.NewAuthHandler(log, authService, int(cfg.SessionTTL().Seconds()))
	chatHandler := httpH.NewChatHandler(log, chatService)
	notesHandler := httpH.NewNotesHandler(log, notesService, studyService, extensionService, commonNotesService)

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ChatHandler:    chatHandler,
		NotesHandler:   notesHandler,
		HealthHandler:  healthHandler,
	})

	log.Info("Server listening", "addr", cfg.Addr)
	if err := server.Run(cfg.Addr); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
