package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/bucket"
	"github.com/runeberget/krets/internal/store"
	"github.com/runeberget/krets/internal/token"
	"github.com/runeberget/krets/internal/websocket"
)

const maxImageBytes = 5 << 20 // 5 MB

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type ImageHandler struct {
	images *bucket.Client
	users  *store.UserStore
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewImageHandler wires profile image upload and serving. A nil bucket
// client means object storage is not configured; the endpoints then answer
// 503.
func NewImageHandler(images *bucket.Client, us *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, users: us, hub: hub, logger: logger}
}

// Upload replaces the caller's profile image. The previous object is removed
// best-effort after the new one is stored.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	userID := auth.UserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required (max 5 MB)")
		return
	}
	defer file.Close()

	// Sniff the real content type rather than trusting the form header
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		writeError(w, http.StatusBadRequest, "could not read image")
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("get user for image upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	key := fmt.Sprintf("images/user-%s.%s", token.NewID(), ext)
	body := io.MultiReader(bytes.NewReader(head[:n]), file)
	if err := h.images.Upload(r.Context(), key, contentType, body); err != nil {
		h.logger.Error("image upload", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	imageURL := "/" + key
	if err := h.users.SetImageURL(userID, imageURL); err != nil {
		h.logger.Error("set image url", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	if user.ImageURL != nil {
		h.deletePrevious(r.Context(), *user.ImageURL)
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "updated", userID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"image_url": imageURL})
}

func (h *ImageHandler) deletePrevious(ctx context.Context, imageURL string) {
	key := strings.TrimPrefix(imageURL, "/")
	if !strings.HasPrefix(key, "images/") {
		return
	}
	if err := h.images.Delete(ctx, key); err != nil {
		h.logger.Warn("delete previous image", "error", err, "key", key)
	}
}

// Serve streams an image from the bucket. Keys embed a fresh uuid per
// upload, so day-long caching is safe.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	key := "images/" + r.PathValue("key")
	body, contentType, err := h.images.Download(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("serve image", "error", err, "key", key)
	}
}
