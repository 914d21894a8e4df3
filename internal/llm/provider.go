package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/SAP-F-2025/yds-assistant-service/internal/llm")

// ErrNetworkFailure marks transport-level failures talking to the generative
// backend. Callers may retry.
var ErrNetworkFailure = errors.New("generative backend unavailable")

// NetworkError wraps the underlying client error for a failed operation.
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Operation, ErrNetworkFailure, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

type Role string

const (
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

type Message struct {
	Role    Role
	Content string
}

// Request is one completion call. System is sent as the system instruction.
type Request struct {
	Operation   string
	System      string
	Messages    []Message
	JSON        bool
	Temperature float32
}

// Generator produces raw model text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config holds the provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Provider talks to an OpenAI-compatible chat completions endpoint.
type Provider struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.With("component", "llm", "model", cfg.Model),
	}
}

func (p *Provider) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.operation", req.Operation),
		attribute.String("llm.model", p.config.Model),
		attribute.Bool("llm.json", req.JSON),
	)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	completion := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSON {
		completion.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	var text string
	err := p.doWithRetry(ctx, req.Operation, func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, completion)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			text = ""
			return nil
		}
		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.logger.DebugContext(ctx, "Completion abandoned",
				"operation", req.Operation,
				"duration", time.Since(start),
				"error", ctxErr)
			return "", ctxErr
		}
		p.logger.ErrorContext(ctx, "Completion failed",
			"operation", req.Operation,
			"duration", time.Since(start),
			"error", err)
		if !isRetryable(err) {
			// rejected by the backend (bad key, bad request): not a transport problem
			return "", fmt.Errorf("%s: completion rejected: %w", req.Operation, err)
		}
		return "", &NetworkError{Operation: req.Operation, Err: err}
	}

	p.logger.DebugContext(ctx, "Completion finished",
		"operation", req.Operation,
		"duration", time.Since(start),
		"response_length", len(text))
	return text, nil
}

// doWithRetry executes fn with exponential backoff while the error is retryable.
func (p *Provider) doWithRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(lastErr) || attempt == p.config.MaxRetries {
			break
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		p.logger.DebugContext(ctx, "Completion failed, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"wait_time", waitTime,
			"error", lastErr)
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
