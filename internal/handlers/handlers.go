package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/middleware"
	"github.com/vibelink/vibelink/internal/stores"
	"github.com/vibelink/vibelink/pkg/storage"
)

// respondError maps the error taxonomy to status codes: validation errors
// are 400 and never reached the platform, lookup misses are 404, anything
// else is a platform failure surfaced as 502. Every failure is terminal
// for the triggering action; there are no retries.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stores.ErrEmptyContent),
		errors.Is(err, stores.ErrEmptyPost),
		errors.Is(err, stores.ErrConflictingMedia),
		errors.Is(err, stores.ErrSelfFollow),
		errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrUnknownBucket),
		errors.Is(err, storage.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, stores.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// sessionFor resolves the caller's session from the JWT user id. Returns
// nil after writing a response when the id is unusable.
func sessionFor(c *gin.Context, sessions *stores.SessionManager) *stores.Session {
	userID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil
	}
	return sessions.Get(userID)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
