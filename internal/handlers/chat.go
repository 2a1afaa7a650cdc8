package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibelink/vibelink/internal/stores"
)

type ChatHandler struct {
	sessions *stores.SessionManager
}

func NewChatHandler(sessions *stores.SessionManager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// GetThread opens the thread with a peer: fetch, bulk mark-read, inbox
// refresh.
func (h *ChatHandler) GetThread(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	peerID, ok := parseIDParam(c, "peer")
	if !ok {
		return
	}

	thread, err := session.OpenThread(c.Request.Context(), peerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": thread.Messages()})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	peerID, ok := parseIDParam(c, "peer")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := session.Thread(peerID).SendMessage(c.Request.Context(), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// GetInbox serves the per-sender unread aggregate. The synchronous
// refresh keeps the response honest even when no realtime event has
// arrived yet.
func (h *ChatHandler) GetInbox(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	if err := session.Inbox.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"senders":      session.Inbox.Digests(),
		"unread_total": session.Inbox.UnreadTotal(),
	})
}
