// Package kafka publishes recorded sightings to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/sightings-map-service/internal/config"
	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

// Publisher produces one message per recorded sighting.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// recordedSighting is the message payload.
type recordedSighting struct {
	domain.Sighting
	RecordedAt time.Time `json:"recordedAt"`
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes s to the topic, keyed by its ID so every message for a
// sighting lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, s domain.Sighting, recordedAt time.Time) error {
	msg, err := serializeToMessage(s, recordedAt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish sighting %d: %w", s.ID, err)
	}
	p.logger.Debug("sighting published", "id", s.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(s domain.Sighting, recordedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(recordedSighting{Sighting: s, RecordedAt: recordedAt.UTC()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sighting: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(s.ID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "species", Value: []byte(s.Species)},
			{Key: "recorded_at", Value: []byte(recordedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
