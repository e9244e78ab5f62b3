package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/metrics"
)

const bufferedCompletionTimeout = 90 * time.Second

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat completion request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint
type OpenAIClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	log    *zap.Logger
}

// NewOpenAIClient creates a new completion client
func NewOpenAIClient(cfg *config.Config, log *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		apiKey: cfg.CompletionAPIKey,
		apiURL: cfg.CompletionAPIURL,
		model:  cfg.CompletionModel,
		// No client timeout: streams are bounded by the request context.
		client: &http.Client{},
		log:    log,
	}
}

// Complete waits for the whole completion and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, p Prompt) (text string, err error) {
	start := time.Now()
	defer func() { observeCompletion(p.Theme, "buffered", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, bufferedCompletionTimeout)
	defer cancel()

	resp, err := c.do(ctx, p, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.NewExternalServiceError("failed to generate recipe", fmt.Errorf("failed to decode completion response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", apperrors.NewExternalServiceError("failed to generate recipe", errors.New("no choices in completion response"))
	}

	return out.Choices[0].Message.Content, nil
}

// Stream forwards each non-empty upstream delta to onFragment in arrival
// order. Cancelling ctx aborts the upstream request.
func (c *OpenAIClient) Stream(ctx context.Context, p Prompt, onFragment func(string) error) (err error) {
	start := time.Now()
	defer func() { observeCompletion(p.Theme, "stream", start, err) }()

	resp, err := c.do(ctx, p, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return apperrors.NewExternalServiceError("failed to generate recipe", fmt.Errorf("failed to decode stream chunk: %w", err))
		}
		if chunk.Error != nil {
			return apperrors.NewExternalServiceError("failed to generate recipe", errors.New(chunk.Error.Message))
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onFragment(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err := scanner.Err(); err != nil {
		return apperrors.NewExternalServiceError("failed to generate recipe", fmt.Errorf("failed to read stream: %w", err))
	}
	return nil
}

func (c *OpenAIClient) do(ctx context.Context, p Prompt, stream bool) (*http.Response, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Stream:      stream,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate recipe", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate recipe", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	c.log.Debug("sending completion request",
		zap.String("theme", p.Theme),
		zap.Bool("stream", stream),
		zap.Int("max_tokens", p.MaxTokens))

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewExternalServiceError("failed to generate recipe", fmt.Errorf("failed to send request: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, apperrors.NewExternalServiceError("failed to generate recipe",
			fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return resp, nil
}

func observeCompletion(theme, mode string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	metrics.CompletionRequestsTotal.WithLabelValues(theme, mode, status).Inc()
	metrics.CompletionDuration.WithLabelValues(theme, mode).Observe(time.Since(start).Seconds())
}
