package stores

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/pkg/logger"
)

// Backends bundles the platform slices a session's stores write through to.
type Backends struct {
	Profiles        ProfileBackend
	ProfileCounters ProfileCounters
	Posts           PostBackend
	PostCounters    PostCounters
	Likes           LikeBackend
	Follows         FollowBackend
	Comments        CommentBackend
	Messages        MessageBackend
	Bucket          AvatarBucket
	Events          EventPublisher
}

// Session is one signed-in user's view of the world: the six stores,
// composed as siblings. Thread and comment stores are created lazily per
// peer and per post, the way the client mounts them per view. State lives
// for the session only; nothing survives a restart.
type Session struct {
	viewerID uuid.UUID
	backends Backends
	logger   *logger.Logger

	Profile *ProfileStore
	Posts   *PostStore
	Likes   *LikeStore
	Follows *FollowStore
	Inbox   *InboxStore

	mu       sync.Mutex
	threads  map[uuid.UUID]*MessageStore
	comments map[uuid.UUID]*CommentStore

	cancel context.CancelFunc
}

func NewSession(viewerID uuid.UUID, backends Backends, logger *logger.Logger) *Session {
	s := &Session{
		viewerID: viewerID,
		backends: backends,
		logger:   logger,
		threads:  make(map[uuid.UUID]*MessageStore),
		comments: make(map[uuid.UUID]*CommentStore),
	}

	s.Profile = NewProfileStore(viewerID, backends.Profiles, backends.Bucket, logger)
	s.Posts = NewPostStore(viewerID, backends.Posts, backends.Profiles, backends.ProfileCounters, backends.Events, logger)
	s.Likes = NewLikeStore(viewerID, backends.Likes, backends.PostCounters, backends.Events, logger)
	s.Follows = NewFollowStore(viewerID, backends.Follows, backends.Profiles, backends.ProfileCounters, backends.Events, logger)
	s.Inbox = NewInboxStore(viewerID, backends.Messages, backends.Profiles, logger)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.Inbox.Run(ctx)
	s.Inbox.Notify()

	return s
}

func (s *Session) ViewerID() uuid.UUID {
	return s.viewerID
}

// Thread returns the message store for a peer, creating it on first use.
func (s *Session) Thread(peerID uuid.UUID) *MessageStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.threads[peerID]
	if !ok {
		store = NewMessageStore(s.viewerID, peerID, s.backends.Messages, s.backends.Profiles, s.backends.Events, s.logger)
		s.threads[peerID] = store
	}
	return store
}

// Comments returns the comment store for a post, creating it on first use.
func (s *Session) Comments(postID uuid.UUID) *CommentStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.comments[postID]
	if !ok {
		store = NewCommentStore(s.viewerID, postID, s.backends.Comments, s.backends.Profiles, s.backends.PostCounters, s.backends.Events, s.logger)
		s.comments[postID] = store
	}
	return store
}

// OpenThread is what happens when a chat view mounts: fetch the thread,
// bulk-mark the peer's messages read, and ask the inbox to refresh.
func (s *Session) OpenThread(ctx context.Context, peerID uuid.UUID) (*MessageStore, error) {
	thread := s.Thread(peerID)
	if _, err := thread.FetchMessages(ctx); err != nil {
		return nil, err
	}
	if err := thread.MarkRead(ctx); err != nil {
		return nil, err
	}
	s.Inbox.Notify()
	return thread, nil
}

func (s *Session) Close() {
	s.cancel()
}

// SessionManager hands out one session per user, created lazily on first
// authenticated request and kept for the process lifetime.
type SessionManager struct {
	backends Backends
	logger   *logger.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionManager(backends Backends, logger *logger.Logger) *SessionManager {
	return &SessionManager{
		backends: backends,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (m *SessionManager) Get(viewerID uuid.UUID) *Session {
	m.mu.RLock()
	session, ok := m.sessions[viewerID]
	m.mu.RUnlock()
	if ok {
		return session
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[viewerID]; ok {
		return session
	}
	session = NewSession(viewerID, m.backends, m.logger)
	m.sessions[viewerID] = session
	return session
}

// Peek returns the live session for a user without creating one. The
// notify worker uses it so offline receivers do not get sessions spun up
// on their behalf.
func (m *SessionManager) Peek(viewerID uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[viewerID]
	return session, ok
}

func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		session.Close()
	}
	m.sessions = make(map[uuid.UUID]*Session)
}
