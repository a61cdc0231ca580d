package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/targets"
	"gorm.io/gorm"
)

const msgTargetRequired = "target_type and target_id are required"

type CommentHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewCommentHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{db: db, targets: targets, logger: logger}
}

// checkTarget parses and resolves a target, writing the error response when
// it is unsupported or not visible to the couple.
func checkTarget(w http.ResponseWriter, r *http.Request, resolver *targets.Resolver, kind string, id uint) (targets.Ref, bool) {
	k, err := targets.ParseKind(kind)
	if err != nil {
		respondTargetError(w, err)
		return targets.Ref{}, false
	}
	ref := targets.Ref{Kind: k, ID: id}
	if err := resolver.Check(r.Context(), middleware.GetCoupleID(r.Context()), ref); err != nil {
		respondTargetError(w, err)
		return targets.Ref{}, false
	}
	return ref, true
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("target_type")
	rawID := r.URL.Query().Get("target_id")
	if kind == "" || rawID == "" {
		respondError(w, http.StatusBadRequest, msgTargetRequired)
		return
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "target_id must be an integer")
		return
	}

	ref, ok := checkTarget(w, r, h.targets, kind, uint(id))
	if !ok {
		return
	}

	var comments []models.Comment
	err = h.db.WithContext(r.Context()).
		Where("couple_id = ? AND target_type = ? AND target_id = ?", middleware.GetCoupleID(r.Context()), string(ref.Kind), ref.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}

	out := make([]dto.CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentDTO(&comments[i]))
	}
	respond(w, http.StatusOK, out)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TargetType == "" || req.TargetID == 0 {
		respondError(w, http.StatusBadRequest, msgTargetRequired)
		return
	}

	ref, ok := checkTarget(w, r, h.targets, req.TargetType, req.TargetID)
	if !ok {
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(w, http.StatusBadRequest, "body: This field is required")
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	comment := models.Comment{
		CoupleID:    middleware.GetCoupleID(ctx),
		TargetType:  string(ref.Kind),
		TargetID:    ref.ID,
		Body:        body,
		CreatedByID: &userID,
	}
	if err := h.db.WithContext(ctx).Create(&comment).Error; err != nil {
		h.logger.Error("creating comment failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	respond(w, http.StatusCreated, dto.NewCommentDTO(&comment))
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, ok := urlID(r, "commentID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	db := h.db.WithContext(r.Context())
	var comment models.Comment
	err := db.Where("id = ? AND couple_id = ?", commentID, middleware.GetCoupleID(r.Context())).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, msgNotFound)
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch comment")
		}
		return
	}

	if err := db.Delete(&comment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	respond(w, http.StatusOK, dto.Deleted{Deleted: true})
}
