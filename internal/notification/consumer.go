package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sharath018/welfare-management-backend/utils"
)

// StartConsumer reads the notifications topic and fans each event out through
// the service. It blocks until the context is cancelled; run it in its own
// goroutine. A missing broker config is a no-op.
func StartConsumer(ctx context.Context, svc Service) {
	reader := utils.NewNotificationReader()
	if reader == nil {
		log.Println("⚠️ Kafka not configured, notification consumer disabled")
		return
	}
	defer reader.Close()

	log.Println("✅ Notification consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("🔄 Notification consumer stopping")
				return
			}
			log.Printf("❌ Notification consumer read error: %v", err)
			continue
		}

		var event utils.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("❌ Dropping unreadable notification event: %v", err)
			continue
		}

		if err := svc.Dispatch(ctx, event); err != nil {
			log.Printf("⚠️ Notification dispatch failed (type %s): %v", event.Type, err)
		}
	}
}
