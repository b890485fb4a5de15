package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/amishk599/jobradar/internal/identity"
	"github.com/amishk599/jobradar/internal/model"
)

// Ensure KafkaNotifier implements model.Notifier.
var _ model.Notifier = (*KafkaNotifier)(nil)

// messageWriter is the part of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes each new posting as a JSON message keyed by its
// identifier, so consumers can compact or dedupe on the key.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// postingMessage is the wire form of a posting on the topic.
type postingMessage struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	ExternalID  string     `json:"external_id,omitempty"`
	Title       string     `json:"title"`
	Company     string     `json:"company,omitempty"`
	Location    string     `json:"location,omitempty"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	DetectedAt  time.Time  `json:"detected_at"`
}

// NewKafkaNotifier creates a synchronous producer for topic.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaNotifier{writer: w, topic: topic, logger: logger}
}

// Notify writes the whole batch in one call.
func (n *KafkaNotifier) Notify(ctx context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	now := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(postings))
	for _, p := range postings {
		id := identity.Resolve(p)
		value, err := json.Marshal(postingMessage{
			ID:          id,
			Source:      p.SourceName,
			ExternalID:  p.ExternalID,
			Title:       p.Title,
			Company:     p.Company,
			Location:    p.Location,
			URL:         p.URL,
			PublishedAt: p.PublishedAt,
			DetectedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("marshal posting %s: %w", id, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(id), Value: value, Time: now})
	}

	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("writing %d messages to kafka topic %s: %w", len(msgs), n.topic, err)
	}
	n.logger.Info("postings published", "topic", n.topic, "count", len(msgs))
	return nil
}

// Close flushes and closes the producer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
