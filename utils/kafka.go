package utils

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

var (
	kafkaWriter *kafka.Writer
	kafkaTopic  string
)

// NotificationEvent is the payload published to the notifications topic.
// The notification consumer fans these out to in-app / email / push channels.
type NotificationEvent struct {
	Type         string                 `json:"type"` // e.g. APPLICATION_APPROVED, PAYMENT_DUE
	UserID       *uint                  `json:"user_id,omitempty"`
	RegionID     *uint                  `json:"region_id,omitempty"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body"`
	Data         map[string]interface{} `json:"data,omitempty"`
	EmittedAt    time.Time              `json:"emitted_at"`
}

// InitializeKafka sets up the shared writer. Missing broker config disables
// publishing rather than failing startup.
func InitializeKafka() {
	brokers := os.Getenv("KAFKA_BROKERS")
	kafkaTopic = os.Getenv("KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "welfare-notifications"
	}

	if brokers == "" {
		log.Println("⚠️ KAFKA_BROKERS not set, notification events disabled")
		return
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        kafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	log.Printf("✅ Kafka writer initialized (topic: %s)", kafkaTopic)
}

// PublishNotificationEvent sends an event to the notifications topic and
// reports whether it reached the broker. Publishing is best-effort: failures
// are logged, never propagated, and callers fall back to the direct in-app
// channel when it returns false.
func PublishNotificationEvent(event NotificationEvent) bool {
	if kafkaWriter == nil {
		return false
	}

	event.EmittedAt = time.Now()
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal notification event: %v", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: payload,
	}); err != nil {
		log.Printf("❌ Failed to publish notification event %s: %v", event.Type, err)
		return false
	}
	return true
}

// NewNotificationReader builds a reader for the notifications topic. The
// consumer group lets multiple instances share the stream.
func NewNotificationReader() *kafka.Reader {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}

	topic := kafkaTopic
	if topic == "" {
		topic = "welfare-notifications"
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   topic,
		GroupID: "welfare-notification-consumer",
	})
}
