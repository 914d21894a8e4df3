package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
)

// EventConfig selects where assistant activity events go.
type EventConfig struct {
	Enabled      bool
	Publisher    string // kafka, memory or mock
	KafkaBrokers string
	Topic        string
}

// Brokers splits KAFKA_BROKERS, dropping blanks.
func (c *EventConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher builds the configured publisher. Disabled events and
// the "mock" publisher record in memory only.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		brokers := c.Brokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka publisher needs KAFKA_BROKERS")
		}
		logger.Info("Publishing events to Kafka", "brokers", brokers, "topic", c.Topic)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.Topic,
			Logger:       logger,
		})
	case "memory", "":
		logger.Info("Publishing events in process", "topic", c.Topic)
		publisher, _ := events.NewInMemoryEventPublisher(events.PublisherConfig{
			TopicName: c.Topic,
			Logger:    logger,
		})
		return publisher, nil
	case "mock":
		return events.NewMockEventPublisher(logger), nil
	}
	return nil, fmt.Errorf("unknown EVENTS_PUBLISHER %q", c.Publisher)
}
