package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

const notificationLimit = 100

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var notifications []models.Notification
	err := h.db.WithContext(r.Context()).
		Where("user_id = ?", middleware.GetUserID(r.Context())).
		Order("created_at DESC, id DESC").
		Limit(notificationLimit).
		Find(&notifications).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	out := make([]dto.NotificationDTO, 0, len(notifications))
	for i := range notifications {
		out = append(out, dto.NewNotificationDTO(&notifications[i]))
	}
	respond(w, http.StatusOK, out)
}

// MarkRead flags the caller's notifications in ids as read. The response
// echoes how many ids were sent, not how many rows changed.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var ids []uint
	raw := bytes.TrimSpace(req.IDs)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '[' || json.Unmarshal(raw, &ids) != nil {
			respondError(w, http.StatusBadRequest, "ids must be a list")
			return
		}
	}

	if len(ids) > 0 {
		err := h.db.WithContext(r.Context()).
			Model(&models.Notification{}).
			Where("user_id = ? AND id IN ?", middleware.GetUserID(r.Context()), ids).
			Update("is_read", true).Error
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update notifications")
			return
		}
	}

	respond(w, http.StatusOK, dto.UpdatedResponse{Updated: len(ids)})
}
