package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/targets"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewActivityHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{db: db, targets: targets, logger: logger}
}

// List returns the newest entries first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	var entries []models.ActivityLog
	err := h.db.WithContext(r.Context()).
		Where("couple_id = ?", middleware.GetCoupleID(r.Context())).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	out := make([]dto.ActivityDTO, 0, len(entries))
	for i := range entries {
		out = append(out, dto.NewActivityDTO(&entries[i]))
	}
	respond(w, http.StatusOK, out)
}

// Create records an entry. A target is stored only when both its type and id
// are given and it resolves within the couple.
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	entry := models.ActivityLog{
		CoupleID: middleware.GetCoupleID(ctx),
		ActorID:  &userID,
		Verb:     req.Verb,
		Metadata: datatypes.JSONMap(req.Metadata),
	}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}

	if req.TargetType != "" && req.TargetID != nil {
		ref, ok := checkTarget(w, r, h.targets, req.TargetType, *req.TargetID)
		if !ok {
			return
		}
		entry.TargetType = string(ref.Kind)
		entry.TargetID = &ref.ID
	}

	if err := h.db.WithContext(ctx).Create(&entry).Error; err != nil {
		h.logger.Error("creating activity failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to record activity")
		return
	}
	respond(w, http.StatusCreated, dto.NewActivityDTO(&entry))
}
