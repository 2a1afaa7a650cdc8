package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/config"
	"github.com/vibelink/vibelink/internal/stores"
)

type FeedHandler struct {
	sessions *stores.SessionManager
	feedCfg  *config.FeedConfig
}

func NewFeedHandler(sessions *stores.SessionManager, feedCfg *config.FeedConfig) *FeedHandler {
	return &FeedHandler{sessions: sessions, feedCfg: feedCfg}
}

// GetFeed refetches the feed, the way the client does on every mount.
// With ranking on, the fetched list is re-sorted by the viewer's declared
// interests; this is a pure local re-sort, never a server-side query.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	posts, err := session.Posts.FetchPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	ranked := h.feedCfg.InterestRanking || c.Query("ranked") == "1"
	if ranked {
		viewer := session.Profile.Profile()
		if viewer == nil {
			viewer, err = session.Profile.FetchProfile(c.Request.Context(), uuid.Nil)
			if err != nil {
				respondError(c, err)
				return
			}
		}
		posts = stores.RankByInterests(posts, viewer.Interests)
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	var req stores.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := session.Posts.CreatePost(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost serves a single post with its author, the permalink view.
func (h *FeedHandler) GetPost(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	post, err := session.Posts.FetchPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *FeedHandler) ToggleLike(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !session.Likes.Loaded() {
		if err := session.Likes.FetchLikes(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}

	action, err := session.Likes.ToggleLike(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":      action,
		"likes_count": session.Likes.LikeCount(postID),
	})
}

func (h *FeedHandler) GetLikeStatus(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !session.Likes.Loaded() {
		if err := session.Likes.FetchLikes(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":       session.Likes.IsLiked(postID),
		"likes_count": session.Likes.LikeCount(postID),
	})
}

func (h *FeedHandler) GetComments(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := session.Comments(postID).FetchComments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *FeedHandler) AddComment(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	postID, ok := parseIDParam(c, "id")
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

	comment, err := session.Comments(postID).AddComment(c.Request.Context(), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
