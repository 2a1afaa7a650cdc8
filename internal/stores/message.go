package stores

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
)

// MessageStore owns the direct-message thread between the viewer and one
// peer. The thread is fetched in both directions ordered ascending, sender
// profiles batch-joined locally. A sent message is appended locally with
// the viewer's profile attached and announced on the change feed keyed by
// the receiver, which is what drives the receiver's realtime inbox.
type MessageStore struct {
	viewerID uuid.UUID
	peerID   uuid.UUID
	backend  MessageBackend
	profiles ProfileBackend
	events   EventPublisher
	logger   *logger.Logger

	mu       sync.RWMutex
	messages []*models.Message
	loaded   bool
}

func NewMessageStore(viewerID, peerID uuid.UUID, backend MessageBackend, profiles ProfileBackend, events EventPublisher, logger *logger.Logger) *MessageStore {
	return &MessageStore{
		viewerID: viewerID,
		peerID:   peerID,
		backend:  backend,
		profiles: profiles,
		events:   events,
		logger:   logger,
	}
}

func (s *MessageStore) PeerID() uuid.UUID {
	return s.peerID
}

// FetchMessages pulls the whole thread and joins sender profiles from one
// batched lookup.
func (s *MessageStore) FetchMessages(ctx context.Context) ([]*models.Message, error) {
	messages, err := s.backend.Thread(ctx, s.viewerID, s.peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	senderIDs := make([]uuid.UUID, 0, len(messages))
	for _, message := range messages {
		senderIDs = append(senderIDs, message.SenderID)
	}

	senders, err := s.profiles.GetByIDs(ctx, senderIDs)
	if err != nil {
		s.logger.WithStore("messages").WithError(err).Error("Failed to fetch message senders")
	} else {
		for _, message := range messages {
			message.Sender = senders[message.SenderID]
		}
	}

	s.mu.Lock()
	s.messages = messages
	s.loaded = true
	s.mu.Unlock()

	return s.Messages(), nil
}

// SendMessage rejects blank content before any network call, inserts the
// row, appends it locally with the viewer's profile, and publishes the
// insert event keyed by the receiver.
func (s *MessageStore) SendMessage(ctx context.Context, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	message := &models.Message{
		SenderID:   s.viewerID,
		ReceiverID: s.peerID,
		Content:    content,
	}
	if err := s.backend.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	sender, err := s.profiles.GetByID(ctx, s.viewerID)
	if err != nil {
		s.logger.WithStore("messages").WithError(err).Error("Failed to fetch own profile for message")
	}
	message.Sender = sender

	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()

	if event, err := queue.NewEvent(queue.EventMessageCreated, queue.MessageEventData{
		MessageID:  message.ID.String(),
		SenderID:   s.viewerID.String(),
		ReceiverID: s.peerID.String(),
		CreatedAt:  message.CreatedAt.Format(time.RFC3339),
	}); err == nil {
		if err := s.events.Publish(ctx, s.peerID.String(), event); err != nil {
			s.logger.WithStore("messages").WithError(err).Error("Failed to publish message event")
		}
	}

	return message, nil
}

// MarkRead stamps read_at on every unread message from the peer to the
// viewer, remotely and on the local copies.
func (s *MessageStore) MarkRead(ctx context.Context) error {
	if err := s.backend.MarkThreadRead(ctx, s.peerID, s.viewerID); err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}

	now := time.Now()
	s.mu.Lock()
	for _, message := range s.messages {
		if message.SenderID == s.peerID && message.ReadAt == nil {
			readAt := now
			message.ReadAt = &readAt
		}
	}
	s.mu.Unlock()

	return nil
}

func (s *MessageStore) Messages() []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*models.Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}
