package utils

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/nomenalista/guestlist-backend/config"
)

// NotificationMessage is the payload mutators publish when something on a
// guest list changes that the event owner should hear about. The
// notification consumer turns these into in-app entries and push messages.
type NotificationMessage struct {
	RecipientID string `json:"recipient_id"` // user id of the receiver
	EventID     string `json:"event_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Category    string `json:"category"` // guest, promoter, event
}

// KafkaProducer wraps the writer for the notification topic. A nil producer
// is valid and drops messages, so the service degrades cleanly when Kafka is
// not configured.
type KafkaProducer struct {
	writer *kafka.Writer
}

// InitKafka builds the producer, or returns nil when no brokers are
// configured.
func InitKafka(cfg *config.Config) *KafkaProducer {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("Kafka not configured, notifications will not be published")
		return nil
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("Kafka producer ready (topic=%s)", cfg.KafkaTopic)
	return &KafkaProducer{writer: writer}
}

// Publish sends one notification message. Failures are logged, not
// returned: notifications are best-effort and must never fail a mutation
// that already persisted.
func (p *KafkaProducer) Publish(ctx context.Context, msg NotificationMessage) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(msg)
	if err != nil {
		log.Printf("kafka: failed to encode notification: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RecipientID),
		Value: value,
	})
	if err != nil {
		log.Printf("kafka: failed to publish notification: %v", err)
	}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
