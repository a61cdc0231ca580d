package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/targets"
	"gorm.io/gorm"
)

const maxReactionTypeLen = 20

type MoodBoardHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewMoodBoardHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *MoodBoardHandler {
	return &MoodBoardHandler{db: db, targets: targets, logger: logger}
}

func (h *MoodBoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	db := h.db.WithContext(r.Context())
	var board models.MoodBoard
	err := db.Where(models.MoodBoard{EventID: event.ID}).
		Attrs(models.MoodBoard{IsEnabled: true}).
		FirstOrCreate(&board).Error
	if err == nil {
		err = db.
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Items.Media").
			Preload("Items.Reactions").
			First(&board, board.ID).Error
	}
	if err != nil {
		h.logger.Error("loading mood board failed", "event_id", event.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch mood board")
		return
	}
	respond(w, http.StatusOK, dto.NewMoodBoardDTO(&board))
}

// CreateItem pins one of the couple's media files to the event's board.
func (h *MoodBoardHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	var req dto.MoodItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	ctx := r.Context()
	db := h.db.WithContext(ctx)

	var media models.MediaFile
	if err := db.Where("id = ? AND couple_id = ?", req.MediaID, event.CoupleID).First(&media).Error; err != nil {
		respondError(w, http.StatusBadRequest, "media_id: Invalid media file")
		return
	}

	var board models.MoodBoard
	if err := db.Where(models.MoodBoard{EventID: event.ID}).
		Attrs(models.MoodBoard{IsEnabled: true}).
		FirstOrCreate(&board).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch mood board")
		return
	}

	userID := middleware.GetUserID(ctx)
	item := models.MoodBoardItem{
		MoodBoardID: board.ID,
		MediaID:     media.ID,
		Caption:     strings.TrimSpace(req.Caption),
		Position:    req.Position,
		CreatedByID: &userID,
	}
	if err := db.Create(&item).Error; err != nil {
		h.logger.Error("creating mood board item failed", "board_id", board.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create mood board item")
		return
	}
	item.Media = &media

	respond(w, http.StatusCreated, dto.NewMoodBoardItemDTO(&item))
}

func (h *MoodBoardHandler) resolveItem(w http.ResponseWriter, r *http.Request) (*models.MoodBoardItem, bool) {
	itemID, ok := urlID(r, "itemID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	record, err := h.targets.Resolve(r.Context(), middleware.GetCoupleID(r.Context()), targets.Ref{Kind: targets.KindMoodBoardItem, ID: itemID})
	if err != nil {
		respondTargetError(w, err)
		return nil, false
	}
	return record.(*models.MoodBoardItem), true
}

func (h *MoodBoardHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(item).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete mood board item")
		return
	}
	respond(w, http.StatusOK, dto.Deleted{Deleted: true})
}

// AddReaction records the caller's reaction once per type and returns the
// item with updated counts.
func (h *MoodBoardHandler) AddReaction(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reaction, ok := reactionType(w, req.ReactionType)
	if !ok {
		return
	}

	db := h.db.WithContext(r.Context())
	var rec models.MoodBoardReaction
	err := db.Where(models.MoodBoardReaction{
		MoodBoardItemID: item.ID,
		UserID:          middleware.GetUserID(r.Context()),
		ReactionType:    reaction,
	}).FirstOrCreate(&rec).Error
	if err != nil {
		h.logger.Error("adding reaction failed", "item_id", item.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to add reaction")
		return
	}

	h.respondItem(w, r, item.ID, http.StatusCreated)
}

// RemoveReaction takes the reaction type from the query string or body.
func (h *MoodBoardHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if q := r.URL.Query().Get("reaction_type"); q != "" {
		req.ReactionType = q
	}
	reaction, ok := reactionType(w, req.ReactionType)
	if !ok {
		return
	}

	err := h.db.WithContext(r.Context()).
		Where("mood_board_item_id = ? AND user_id = ? AND reaction_type = ?", item.ID, middleware.GetUserID(r.Context()), reaction).
		Delete(&models.MoodBoardReaction{}).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to remove reaction")
		return
	}

	h.respondItem(w, r, item.ID, http.StatusOK)
}

func (h *MoodBoardHandler) respondItem(w http.ResponseWriter, r *http.Request, itemID uint, status int) {
	var item models.MoodBoardItem
	err := h.db.WithContext(r.Context()).
		Preload("Media").
		Preload("Reactions").
		First(&item, itemID).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch mood board item")
		return
	}
	respond(w, status, dto.NewMoodBoardItemDTO(&item))
}

func reactionType(w http.ResponseWriter, raw string) (string, bool) {
	reaction := strings.TrimSpace(raw)
	if reaction == "" {
		reaction = models.DefaultReaction
	}
	if len(reaction) > maxReactionTypeLen {
		respondError(w, http.StatusBadRequest, "reaction_type: Must be at most 20 characters")
		return "", false
	}
	return reaction, true
}
