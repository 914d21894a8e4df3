package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
)

// runSequenced runs fn under a last-request-wins ticket for (username, widget).
// A result whose ticket was superseded while fn ran is discarded with
// ErrStaleResponse, so callers apply side effects only after it returns nil.
func runSequenced[T any](ctx context.Context, tracker *sequence.Tracker, username string, widget sequence.Widget, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ticket := tracker.Begin(username, widget)

	result, err := fn(ctx)
	if completeErr := tracker.Complete(ticket); completeErr != nil {
		return zero, completeErr
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}

// generateText returns trimmed model text for free-form prompts.
func generateText(ctx context.Context, generator llm.Generator, req llm.Request) (string, error) {
	raw, err := generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyModelResponse
	}
	return text, nil
}

// studyTracker credits user actions toward the daily challenge. Failures are
// logged and never fail the action that earned the credit.
type studyTracker struct {
	challenges ChallengeService
	logger     *slog.Logger
}

func (t studyTracker) track(ctx context.Context, username string, action models.ChallengeType, details *models.ActionDetails) *ChallengeStatus {
	if t.challenges == nil {
		return nil
	}
	status, err := t.challenges.TrackAction(ctx, username, action, details)
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to track challenge action",
			"username", username, "action", action, "error", err)
		return nil
	}
	return status
}

func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.AssistantEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}
