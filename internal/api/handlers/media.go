package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/storage"
	"gorm.io/gorm"
)

// MaxUploadBytes caps a single media upload.
const MaxUploadBytes = 20 << 20

type MediaHandler struct {
	db     *gorm.DB
	store  storage.Store
	logger *slog.Logger
}

func NewMediaHandler(db *gorm.DB, store storage.Store, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{db: db, store: store, logger: logger}
}

// Upload stores the multipart "file" field, then records it. If the row
// cannot be written the stored object is removed again.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusBadRequest, "file: Upload exceeds 20 MB")
			return
		}
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ctx := r.Context()
	coupleID := middleware.GetCoupleID(ctx)
	userID := middleware.GetUserID(ctx)
	contentType := header.Header.Get("Content-Type")
	key := storage.NewKey(coupleID, header.Filename, time.Now())

	url, err := h.store.Put(ctx, storage.Object{
		Key:         key,
		Body:        file,
		Size:        header.Size,
		ContentType: contentType,
	})
	if err != nil {
		h.logger.Error("storing upload failed", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	media := models.MediaFile{
		CoupleID:     coupleID,
		StorageKey:   key,
		URL:          url,
		MimeType:     contentType,
		SizeBytes:    header.Size,
		UploadedByID: &userID,
	}
	if err := h.db.WithContext(ctx).Create(&media).Error; err != nil {
		h.logger.Error("recording upload failed", "key", key, "error", err)
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			h.logger.Warn("orphaned media object", "key", key, "error", delErr)
		}
		respondError(w, http.StatusInternalServerError, "Failed to save media")
		return
	}

	respond(w, http.StatusCreated, dto.NewMediaDTO(&media))
}
