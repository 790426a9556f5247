package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/utils"
)

// StartKafkaConsumer runs the notification consumer loop until ctx is
// cancelled. Messages that fail to decode are dropped with a log line;
// delivery failures are logged and the offset committed anyway, because a
// notification is not worth wedging the partition over.
func StartKafkaConsumer(ctx context.Context, cfg *config.Config, svc Service) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("Kafka not configured, notification consumer disabled")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		GroupID: "guestlist-notifications",
	})
	defer reader.Close()

	log.Printf("notification consumer started (topic=%s)", cfg.KafkaTopic)
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Println("notification consumer stopped")
				return
			}
			log.Printf("kafka: read failed: %v", err)
			continue
		}

		var msg utils.NotificationMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("kafka: dropping undecodable message at offset %d: %v", m.Offset, err)
			continue
		}

		if err := svc.Deliver(ctx, msg); err != nil {
			log.Printf("notification delivery failed for %s: %v", msg.RecipientID, err)
		}
	}
}
