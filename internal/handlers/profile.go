package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/stores"
	"github.com/vibelink/vibelink/pkg/storage"
)

type ProfileHandler struct {
	sessions *stores.SessionManager
	bucket   *storage.BucketStore
}

func NewProfileHandler(sessions *stores.SessionManager, bucket *storage.BucketStore) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, bucket: bucket}
}

// GetProfile serves /users/:id; "me" resolves to the viewer.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	target := uuid.Nil
	if raw := c.Param("id"); raw != "" && raw != "me" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		target = parsed
	}

	profile, err := session.Profile.FetchProfile(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	var patch stores.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := session.Profile.UpdateProfile(c.Request.Context(), &patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	data, contentType, ok := readUpload(c)
	if !ok {
		return
	}

	url, err := session.Profile.UploadAvatar(c.Request.Context(), contentType, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// UploadMedia is the generic bucket upload used before creating a post.
// A later failed post insert does not remove the object; orphans are
// accepted.
func (h *ProfileHandler) UploadMedia(c *gin.Context) {
	session := sessionFor(c, h.sessions)
	if session == nil {
		return
	}

	data, contentType, ok := readUpload(c)
	if !ok {
		return
	}

	bucket := storage.BucketFor(contentType)
	url, err := h.bucket.Upload(bucket, session.ViewerID().String(), contentType, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"bucket":   bucket,
		"is_video": storage.IsVideoType(contentType),
	})
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return nil, "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}
