package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owenshen0907/NihonGO/internal/http/response"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
	"github.com/owenshen0907/NihonGO/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chatService: chatService}
}

type chatRequest struct {
	// Message is either a string or the OpenAI multimodal content array;
	// it is forwarded untouched.
	Message any `json:"message"`
}

// Chat relays the upstream completion stream to the client event by event.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	body, err := h.chatService.OpenStream(c.Request.Context(), req.Message)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	err = openai.StreamSSE(body, func(event, data string) error {
		if event != "" {
			if _, werr := c.Writer.WriteString("event: " + event + "\n"); werr != nil {
				return werr
			}
		}
		if _, werr := c.Writer.WriteString("data: " + data + "\n\n"); werr != nil {
			return werr
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil && err != io.EOF {
		// Headers are gone; all we can do is log and drop the connection.
		h.log.Warn("Chat stream relay interrupted", "error", err.Error())
	}
}
