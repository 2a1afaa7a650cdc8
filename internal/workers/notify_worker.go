package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/stores"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
)

// NotifyWorker consumes message insert events from the change feed and
// pokes the receiver's inbox when that user has a live session. Triggers
// coalesce inside the inbox's single-flight channel, so a burst of
// inserts costs one refetch. Deduplication, backoff and backfill after a
// broker outage are the consumer client's concern, not handled here.
type NotifyWorker struct {
	consumer *queue.KafkaConsumer
	sessions *stores.SessionManager
	logger   *logger.Logger
}

func NewNotifyWorker(consumer *queue.KafkaConsumer, sessions *stores.SessionManager, logger *logger.Logger) *NotifyWorker {
	return &NotifyWorker{
		consumer: consumer,
		sessions: sessions,
		logger:   logger,
	}
}

func (w *NotifyWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notify worker...")

	return w.consumer.Subscribe(ctx, func(event queue.Event) error {
		switch event.Type {
		case queue.EventMessageCreated:
			return w.handleMessageCreated(event)
		default:
			// Other activity events pass through untouched.
			return nil
		}
	})
}

func (w *NotifyWorker) handleMessageCreated(event queue.Event) error {
	var data queue.MessageEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("invalid message created event data: %w", err)
	}

	receiverID, err := uuid.Parse(data.ReceiverID)
	if err != nil {
		return fmt.Errorf("invalid receiver ID: %w", err)
	}

	session, ok := w.sessions.Peek(receiverID)
	if !ok {
		// Receiver has no live session; the inbox query on their next
		// sign-in covers it.
		return nil
	}

	session.Inbox.Notify()

	w.logger.WithFields(map[string]interface{}{
		"receiver_id": data.ReceiverID,
		"sender_id":   data.SenderID,
	}).Debug("Inbox refresh requested")

	return nil
}

func (w *NotifyWorker) Stop() error {
	return w.consumer.Close()
}
