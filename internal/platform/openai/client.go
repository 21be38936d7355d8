package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/platform/httpx"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// Message is one chat turn. Content is either a plain string or the
// OpenAI multimodal content array; it is forwarded as-is.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Client talks to OpenAI-compatible endpoints. Every call takes the
// profile to use, so different features can point at different providers.
type Client interface {
	// Embed returns the embedding vector for a single input string.
	Embed(ctx context.Context, p config.Profile, input string) ([]float32, error)

	// CompleteJSON runs a non-streaming chat completion whose system prompt
	// demands JSON output, and returns the parsed message content.
	CompleteJSON(ctx context.Context, p config.Profile, user string) (json.RawMessage, error)

	// OpenChatStream starts a streaming chat completion and hands back the
	// raw SSE body. The caller owns the ReadCloser.
	OpenChatStream(ctx context.Context, p config.Profile, messages []Message) (io.ReadCloser, error)
}

type client struct {
	log          *logger.Logger
	httpClient   *http.Client
	streamClient *http.Client
	maxRetries   int
}

func NewClient(log *logger.Logger) Client {
	timeoutSec := 180
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}
	maxRetries := 4
	if v := strings.TrimSpace(os.Getenv("OPENAI_MAX_RETRIES")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}
	return &client{
		log:        log.With("component", "openai"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		// No client timeout on streams; the request context bounds them.
		streamClient: &http.Client{},
		maxRetries:   maxRetries,
	}
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, url, apiKey string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, url, apiKey string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, url, apiKey, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}
		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)
		c.log.Warn("OpenAI request retrying",
			"url", url,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *client) Embed(ctx context.Context, p config.Profile, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty embedding input")
	}
	var out embeddingResponse
	if err := c.do(ctx, p.APIURL, p.APIKey, embeddingRequest{Model: p.Model, Input: []string{input}}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response has no data")
	}
	return out.Data[0].Embedding, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) CompleteJSON(ctx context.Context, p config.Profile, user string) (json.RawMessage, error) {
	req := chatRequest{
		Model: p.Model,
		Messages: []Message{
			{Role: "system", Content: p.SystemPrompt},
			{Role: "user", Content: user},
		},
	}
	var out chatResponse
	if err := c.do(ctx, p.APIURL, p.APIKey, req, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}
	content := stripJSONFence(out.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("model returned invalid JSON: %s", truncate(content, 200))
	}
	return json.RawMessage(content), nil
}

// stripJSONFence removes a surrounding ```json ... ``` block when the model
// ignores the "JSON only" instruction.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *client) OpenChatStream(ctx context.Context, p config.Profile, messages []Message) (io.ReadCloser, error) {
	all := make([]Message, 0, len(messages)+1)
	if strings.TrimSpace(p.SystemPrompt) != "" {
		all = append(all, Message{Role: "system", Content: p.SystemPrompt})
	}
	all = append(all, messages...)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chatRequest{Model: p.Model, Messages: all, Stream: true}); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp.Body, nil
}
