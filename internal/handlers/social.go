package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vibelink/vibelink/internal/stores"
)

type SocialHandler struct {
	sessions *stores.SessionManager
}

func NewSocialHandler(sessions *stores.SessionManager) *SocialHandler {
	return &SocialHandler{sessions: sessions}
}

// GetFollows re-pulls both edge lists with profiles attached.
func (h *SocialHandler) GetFollows(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	if err := session.Follows.FetchFollows(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": session.Follows.Followers(),
		"following": session.Follows.Following(),
	})
}

// Explore lists users to discover, most followed first. The viewer never
// appears in their own explore list.
func (h *SocialHandler) Explore(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	profiles, err := session.Profile.Explore(c.Request.Context(), parseLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// SearchUsers matches usernames and display names by substring, for user
// search and tagging.
func (h *SocialHandler) SearchUsers(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	profiles, err := session.Profile.SearchProfiles(c.Request.Context(), c.Query("q"), parseLimit(c, 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func parseLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}

func (h *SocialHandler) Follow(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !session.Follows.Loaded() {
		if err := session.Follows.FetchFollows(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := session.Follows.FollowUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": true})
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !session.Follows.Loaded() {
		if err := session.Follows.FetchFollows(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := session.Follows.UnfollowUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}
