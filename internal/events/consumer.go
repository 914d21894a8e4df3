package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handler processes one decoded event. Returning an error nacks the message.
type Handler func(ctx context.Context, event AssistantEvent) error

// Consume subscribes to topic and feeds every event to handle until ctx is
// done. Messages that cannot be decoded are acked and dropped.
func Consume(ctx context.Context, subscriber message.Subscriber, topic string, handle Handler, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var event AssistantEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Warn("Dropping undecodable assistant event",
					"message_id", msg.UUID,
					"error", err)
				msg.Ack()
				continue
			}

			if err := handle(msg.Context(), event); err != nil {
				logger.Error("Assistant event handler failed",
					"event_id", event.ID,
					"event_type", event.Type,
					"error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// LogActivity writes a structured activity line per event.
func LogActivity(logger *slog.Logger) Handler {
	return func(ctx context.Context, event AssistantEvent) error {
		level := slog.LevelDebug
		switch event.Type {
		case EventChallengeCompleted, EventStreakReset:
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "User activity",
			"event_type", event.Type,
			"username", event.Username,
			"event_id", event.ID,
			"at", event.Timestamp)
		return nil
	}
}
