package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventPublisher_DeliversToSubscribers(t *testing.T) {
	publisher, pubSub := NewInMemoryEventPublisher(PublisherConfig{
		TopicName: "assistant-events",
		Logger:    discardLogger(),
	})
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "assistant-events")
	require.NoError(t, err)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := NewChallengeCompletedEvent("ayse", at, ChallengeCompletedEvent{
		ChallengeID:   "2025-03-10T09:00:00Z",
		ChallengeType: "dictionary",
		Target:        3,
		Streak:        4,
		CompletedDate: "2025-03-10",
	})
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventChallengeCompleted), msg.Metadata.Get("event_type"))
		assert.Equal(t, "ayse", msg.Metadata.Get("username"))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		data := decoded["data"].(map[string]interface{})
		assert.Equal(t, float64(4), data["streak"])
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher_RecordsEvents(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	at := time.Now()

	require.NoError(t, mock.Publish(context.Background(), NewWordSavedEvent("ayse", "resilient", at)))
	require.NoError(t, mock.Publish(context.Background(), NewStreakResetEvent("ayse", at, StreakResetEvent{PreviousStreak: 2, Day: "2025-03-10"})))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	saved := mock.EventsOfType(EventWordSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, WordSavedEvent{Word: "resilient"}, saved[0].Data)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestGenerateEventID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateEventID(), GenerateEventID())
}

func TestConsume_HandlesPublishedEvents(t *testing.T) {
	publisher, _ := NewInMemoryEventPublisher(PublisherConfig{
		TopicName: "assistant-events",
		Logger:    discardLogger(),
	})
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan AssistantEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- Consume(ctx, publisher.Subscriber(), publisher.Topic(), func(_ context.Context, event AssistantEvent) error {
			select {
			case received <- event:
			default:
			}
			return nil
		}, discardLogger())
	}()

	event := NewWordSavedEvent("ayse", "resilient", time.Now())
	// the subscription may not exist yet on the first attempt
	require.Eventually(t, func() bool {
		assert.NoError(t, publisher.Publish(ctx, event))
		select {
		case got := <-received:
			assert.Equal(t, EventWordSaved, got.Type)
			assert.Equal(t, "ayse", got.Username)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestKafkaPublisher_HasNoInProcessSubscriber(t *testing.T) {
	p := &WatermillEventPublisher{topicName: "t"}
	assert.Nil(t, p.Subscriber())
	assert.Equal(t, "t", p.Topic())
}
