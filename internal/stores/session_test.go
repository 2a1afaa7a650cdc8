package stores

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/pkg/logger"
)

func testBackends(platform *fakePlatform) Backends {
	return Backends{
		Profiles:        platform,
		ProfileCounters: platform,
		Posts:           postAdapter{platform},
		PostCounters:    platform,
		Likes:           likeAdapter{platform},
		Follows:         followAdapter{platform},
		Comments:        commentAdapter{platform},
		Messages:        messageAdapter{platform},
		Bucket:          &fakeBucket{},
		Events:          &fakePublisher{},
	}
}

func TestSessionLazyStores(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	peer := platform.addProfile("bob")

	session := NewSession(viewer.ID, testBackends(platform), logger.NewLogger())
	defer session.Close()

	thread := session.Thread(peer.ID)
	assert.Equal(t, session.Thread(peer.ID), thread)
	assert.Equal(t, thread.PeerID(), peer.ID)

	postID := uuid.New()
	comments := session.Comments(postID)
	assert.Equal(t, session.Comments(postID), comments)
	assert.Equal(t, comments.PostID(), postID)
}

func TestOpenThreadMarksRead(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	peer := platform.addProfile("bob")
	seedMessage(platform, peer.ID, viewer.ID, "unread until opened")

	session := NewSession(viewer.ID, testBackends(platform), logger.NewLogger())
	defer session.Close()

	thread, err := session.OpenThread(context.Background(), peer.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(thread.Messages()), 1)
	assert.NotEqual(t, thread.Messages()[0].ReadAt, nil)

	// the inbox drains once the refresh loop picks up the notify
	deadline := time.Now().Add(2 * time.Second)
	for session.Inbox.UnreadTotal() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("inbox never drained")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionManagerReusesSessions(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	other := platform.addProfile("bob")

	manager := NewSessionManager(testBackends(platform), logger.NewLogger())
	defer manager.Close()

	_, live := manager.Peek(viewer.ID)
	assert.Equal(t, live, false)

	session := manager.Get(viewer.ID)
	assert.Equal(t, manager.Get(viewer.ID), session)

	peeked, live := manager.Peek(viewer.ID)
	assert.Equal(t, live, true)
	assert.Equal(t, peeked, session)
	assert.NotEqual(t, manager.Get(other.ID), session)
}
