package events

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/storage"
)

// PosterUploadRequest is the body for POST /events/:id/poster/presign.
type PosterUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignPosterUpload handles POST /events/:id/poster/presign. It returns a
// pre-signed PUT URL so the dashboard uploads directly to S3, plus the public
// URL to confirm with once the upload completes.
func (h *Handler) PresignPosterUpload(c *gin.Context) {
	if h.storage == nil {
		response.Internal(c, "poster storage is not configured")
		return
	}
	ev := c.MustGet(ContextEvent).(*models.Event)

	var req PosterUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filename and content_type required")
		return
	}
	if !storage.ValidatePosterFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "poster must be a jpeg, png or webp image")
		return
	}

	key := storage.PosterKey(ev.ID.String(), req.Filename)
	uploadURL, err := h.storage.GeneratePresignedUploadURL(c.Request.Context(), key, req.ContentType, h.storage.PresignExpire())
	if err != nil {
		h.logger.Error("presign poster upload", zap.Error(err))
		response.Internal(c, "failed to create upload URL")
		return
	}
	response.OK(c, gin.H{
		"upload_url": uploadURL,
		"key":        key,
		"public_url": h.storage.PublicObjectURL(key),
	})
}

// UploadPoster handles POST /events/:id/poster: a server-side multipart upload
// for clients that cannot use the presigned flow.
func (h *Handler) UploadPoster(c *gin.Context) {
	if h.storage == nil {
		response.Internal(c, "poster storage is not configured")
		return
	}
	ev := c.MustGet(ContextEvent).(*models.Event)

	file, header, err := c.Request.FormFile("poster")
	if err != nil {
		response.BadRequest(c, "poster file required")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxPosterFileSize {
		response.BadRequest(c, "poster exceeds the 5MB limit")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidatePosterFileType(contentType, header.Filename) {
		response.BadRequest(c, "poster must be a jpeg, png or webp image")
		return
	}

	key := storage.PosterKey(ev.ID.String(), header.Filename)
	publicURL, err := h.storage.Upload(c.Request.Context(), key, contentType, file, header.Size)
	if err != nil {
		h.logger.Error("upload poster", zap.Error(err))
		response.Internal(c, "failed to upload poster")
		return
	}
	if err := h.repo.SetPosterURL(c.Request.Context(), ev.ID, &publicURL); err != nil {
		response.Internal(c, "failed to save poster URL")
		return
	}
	response.OK(c, gin.H{"poster_url": publicURL})
}

// ConfirmPosterRequest is the body for PUT /events/:id/poster.
type ConfirmPosterRequest struct {
	Key string `json:"key" binding:"required"`
}

// ConfirmPoster handles PUT /events/:id/poster: records the poster URL after a
// successful presigned upload. The key must belong to this event's prefix.
func (h *Handler) ConfirmPoster(c *gin.Context) {
	if h.storage == nil {
		response.Internal(c, "poster storage is not configured")
		return
	}
	ev := c.MustGet(ContextEvent).(*models.Event)

	var req ConfirmPosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "key required")
		return
	}
	if !strings.HasPrefix(req.Key, storage.PosterKey(ev.ID.String(), "")) {
		response.BadRequest(c, "key does not belong to this event")
		return
	}
	publicURL := h.storage.PublicObjectURL(req.Key)
	if err := h.repo.SetPosterURL(c.Request.Context(), ev.ID, &publicURL); err != nil {
		response.Internal(c, "failed to save poster URL")
		return
	}
	response.OK(c, gin.H{"poster_url": publicURL})
}

// DeletePoster handles DELETE /events/:id/poster: removes the object from S3
// and clears the stored URL.
func (h *Handler) DeletePoster(c *gin.Context) {
	if h.storage == nil {
		response.Internal(c, "poster storage is not configured")
		return
	}
	ev := c.MustGet(ContextEvent).(*models.Event)
	if ev.PosterURL == nil || *ev.PosterURL == "" {
		response.NotFound(c, "event has no poster")
		return
	}

	// Object key is everything after the bucket host.
	if idx := strings.Index(*ev.PosterURL, ".amazonaws.com/"); idx >= 0 {
		key := (*ev.PosterURL)[idx+len(".amazonaws.com/"):]
		if err := h.storage.DeletePoster(c.Request.Context(), key); err != nil {
			h.logger.Warn("delete poster object", zap.Error(err))
		}
	}
	if err := h.repo.SetPosterURL(c.Request.Context(), ev.ID, nil); err != nil {
		response.Internal(c, "failed to clear poster URL")
		return
	}
	response.NoContent(c)
}
