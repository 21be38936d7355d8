package services

import (
	"context"
	"io"
	"net/http"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
)

type ChatService interface {
	// OpenStream starts a tutoring completion for the user's (possibly
	// multimodal) message and returns the upstream SSE body for relaying.
	OpenStream(ctx context.Context, message any) (io.ReadCloser, error)
}

type chatService struct {
	log     *logger.Logger
	client  openai.Client
	profile config.Profile
}

func NewChatService(log *logger.Logger, client openai.Client, profile config.Profile) ChatService {
	return &chatService{log: log.With("service", "ChatService"), client: client, profile: profile}
}

func (s *chatService) OpenStream(ctx context.Context, message any) (io.ReadCloser, error) {
	if message == nil {
		return nil, apierr.New(http.StatusBadRequest, "missing_message", errMissingField("message"))
	}
	body, err := s.client.OpenChatStream(ctx, s.profile, []openai.Message{
		{Role: "user", Content: message},
	})
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "upstream_chat_failed", err)
	}
	return body, nil
}
