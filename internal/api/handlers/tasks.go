package handlers

import (
	"context"
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

type TaskHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewTaskHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{db: db, targets: targets, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.WithContext(r.Context()).
		Where("couple_id = ?", middleware.GetCoupleID(r.Context())).
		Order("created_at DESC, id DESC")

	if raw := r.URL.Query().Get("event_id"); raw != "" {
		eventID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "event_id must be an integer")
			return
		}
		query = query.Where("event_id = ?", eventID)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}

	out := make([]dto.TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, dto.NewTaskDTO(&tasks[i]))
	}
	respond(w, http.StatusOK, out)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}
	if !h.checkRelations(w, r, req.EventID, req.AssignedTo) {
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	due, _ := dto.ParseDate(req.DueDate)
	task := models.Task{
		CoupleID:     middleware.GetCoupleID(ctx),
		EventID:      req.EventID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       models.TaskStatus(req.Status),
		DueDate:      due,
		AssignedToID: req.AssignedTo,
		CreatedByID:  &userID,
	}
	if err := h.db.WithContext(ctx).Create(&task).Error; err != nil {
		h.logger.Error("creating task failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}
	respond(w, http.StatusCreated, dto.NewTaskDTO(&task))
}

func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	task, ok := h.taskFromURL(w, r)
	if !ok {
		return
	}

	var req dto.TaskPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}
	if !h.checkRelations(w, r, req.EventID, req.AssignedTo) {
		return
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}
	if req.DueDate != nil {
		task.DueDate, _ = dto.ParseDate(req.DueDate)
	}
	if req.EventID != nil {
		task.EventID = req.EventID
	}
	if req.AssignedTo != nil {
		task.AssignedToID = req.AssignedTo
	}

	// Save runs the BeforeSave hook that maintains completed_at.
	if err := h.db.WithContext(r.Context()).Save(task).Error; err != nil {
		h.logger.Error("updating task failed", "task_id", task.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}
	respond(w, http.StatusOK, dto.NewTaskDTO(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.taskFromURL(w, r)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(task).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	respond(w, http.StatusOK, dto.Deleted{Deleted: true})
}

func (h *TaskHandler) taskFromURL(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	taskID, ok := urlID(r, "taskID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}

	record, err := h.targets.Resolve(r.Context(), middleware.GetCoupleID(r.Context()), targets.Ref{Kind: targets.KindTask, ID: taskID})
	if err != nil {
		respondTargetError(w, err)
		return nil, false
	}
	return record.(*models.Task), true
}

// checkRelations validates the optional event and assignee. The event must be
// the couple's; the assignee must be an active or invited member.
func (h *TaskHandler) checkRelations(w http.ResponseWriter, r *http.Request, eventID, assignee *uint) bool {
	ctx := r.Context()
	coupleID := middleware.GetCoupleID(ctx)

	if eventID != nil {
		err := h.targets.Check(ctx, coupleID, targets.Ref{Kind: targets.KindEvent, ID: *eventID})
		if errors.Is(err, targets.ErrTargetNotFound) {
			respondError(w, http.StatusBadRequest, "event_id: Invalid event")
			return false
		}
		if err != nil {
			respondTargetError(w, err)
			return false
		}
	}

	if assignee != nil {
		member, err := h.isMember(ctx, coupleID, *assignee)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to check assignee")
			return false
		}
		if !member {
			respondError(w, http.StatusBadRequest, "assigned_to: User is not a member of this couple")
			return false
		}
	}
	return true
}

func (h *TaskHandler) isMember(ctx context.Context, coupleID, userID uint) (bool, error) {
	var count int64
	err := h.db.WithContext(ctx).Model(&models.CoupleMember{}).
		Where("couple_id = ? AND user_id = ? AND status IN ?", coupleID, userID,
			[]models.MemberStatus{models.MemberStatusActive, models.MemberStatusInvited}).
		Count(&count).Error
	return count > 0, err
}
