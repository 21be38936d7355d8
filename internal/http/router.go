package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/owenshen0907/NihonGO/internal/http/handlers"
	httpMW "github.com/owenshen0907/NihonGO/internal/http/middleware"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	ChatHandler    *httpH.ChatHandler
	NotesHandler   *httpH.NotesHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("nihongo-backend"))
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.GET("/auth/callback", cfg.AuthHandler.Callback)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.AuthHandler != nil {
			protected.GET("/user", cfg.AuthHandler.GetMe)
		}

		// Chat (SSE relay)
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Chat)
		}

		// Notes
		if cfg.NotesHandler != nil {
			protected.POST("/notes/generate", cfg.NotesHandler.Generate)
			protected.GET("/notes", cfg.NotesHandler.Query)
			protected.POST("/notes/add", cfg.NotesHandler.Add)
			protected.POST("/notes/extension", cfg.NotesHandler.Extension)
			protected.POST("/notes/common", cfg.NotesHandler.Common)
			protected.GET("/notes/common", cfg.NotesHandler.CommonList)
		}
	}

	return r
}
