package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
)

// SenderDigest is the per-sender unread aggregate: how many unread
// messages that sender has addressed to the viewer, and the newest one.
type SenderDigest struct {
	SenderID    uuid.UUID       `json:"sender_id"`
	Sender      *models.Profile `json:"sender,omitempty"`
	Count       int             `json:"count"`
	LastMessage string          `json:"last_message"`
	LastAt      time.Time       `json:"last_at"`
}

// InboxStore maintains the unread-notification aggregate, recomputed from
// the full set of unread messages addressed to the viewer. Refresh
// triggers arrive from the realtime consumer and from thread opens; they
// coalesce through a capacity-one notify channel feeding a single refresh
// goroutine, so overlapping triggers collapse into one refetch instead of
// racing each other.
type InboxStore struct {
	viewerID uuid.UUID
	backend  MessageBackend
	profiles ProfileBackend
	logger   *logger.Logger

	mu      sync.RWMutex
	digests map[uuid.UUID]*SenderDigest

	// refreshMu serializes whole refreshes. The run loop already executes
	// them one at a time; this extends that to synchronous callers, so a
	// slow earlier fetch can never land its snapshot over a newer one.
	refreshMu sync.Mutex

	notify chan struct{}
}

func NewInboxStore(viewerID uuid.UUID, backend MessageBackend, profiles ProfileBackend, logger *logger.Logger) *InboxStore {
	return &InboxStore{
		viewerID: viewerID,
		backend:  backend,
		profiles: profiles,
		logger:   logger,
		digests:  make(map[uuid.UUID]*SenderDigest),
		notify:   make(chan struct{}, 1),
	}
}

// Notify requests a refresh. Safe from any goroutine; requests arriving
// while one is already pending fold into it.
func (s *InboxStore) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run drains refresh requests until the context ends. Start it once per
// session.
func (s *InboxStore) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			if err := s.Refresh(ctx); err != nil {
				s.logger.WithStore("inbox").WithError(err).Error("Failed to refresh inbox")
			}
		}
	}
}

// Refresh recomputes the whole aggregate from the unread set. Refreshes
// run strictly one after another, fetch and swap included.
func (s *InboxStore) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	unread, err := s.backend.ListUnread(ctx, s.viewerID)
	if err != nil {
		return fmt.Errorf("failed to list unread messages: %w", err)
	}

	digests := make(map[uuid.UUID]*SenderDigest)
	for _, message := range unread {
		digest, ok := digests[message.SenderID]
		if !ok {
			digest = &SenderDigest{SenderID: message.SenderID}
			digests[message.SenderID] = digest
		}
		digest.Count++
		if !message.CreatedAt.Before(digest.LastAt) {
			digest.LastMessage = message.Content
			digest.LastAt = message.CreatedAt
		}
	}

	senderIDs := make([]uuid.UUID, 0, len(digests))
	for id := range digests {
		senderIDs = append(senderIDs, id)
	}
	if len(senderIDs) > 0 {
		senders, err := s.profiles.GetByIDs(ctx, senderIDs)
		if err != nil {
			s.logger.WithStore("inbox").WithError(err).Error("Failed to fetch digest senders")
		} else {
			for id, digest := range digests {
				digest.Sender = senders[id]
			}
		}
	}

	s.mu.Lock()
	s.digests = digests
	s.mu.Unlock()

	return nil
}

// Digests returns the aggregate newest-activity first.
func (s *InboxStore) Digests() []*SenderDigest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SenderDigest, 0, len(s.digests))
	for _, digest := range s.digests {
		out = append(out, digest)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAt.After(out[j].LastAt)
	})
	return out
}

// UnreadTotal sums unread counts across senders.
func (s *InboxStore) UnreadTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, digest := range s.digests {
		total += digest.Count
	}
	return total
}
