package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

type EventHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewEventHandler(db *gorm.DB, logger *slog.Logger) *EventHandler {
	return &EventHandler{db: db, logger: logger}
}

// findCoupleEvent loads a live event owned by coupleID.
func findCoupleEvent(db *gorm.DB, coupleID, eventID uint) (*models.Event, error) {
	var event models.Event
	err := db.Where("id = ? AND couple_id = ?", eventID, coupleID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// eventFromURL resolves the {eventID} path parameter, writing 404 when the
// event is missing, deleted or foreign.
func eventFromURL(w http.ResponseWriter, r *http.Request, db *gorm.DB) (*models.Event, bool) {
	eventID, ok := urlID(r, "eventID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	event, err := findCoupleEvent(db.WithContext(r.Context()), middleware.GetCoupleID(r.Context()), eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, msgNotFound)
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch event")
		}
		return nil, false
	}
	return event, true
}

func (h *EventHandler) activeEvents(r *http.Request, coupleID uint) ([]models.Event, error) {
	var events []models.Event
	err := h.db.WithContext(r.Context()).
		Preload("EventType").
		Where("couple_id = ? AND is_active = ?", coupleID, true).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.activeEvents(r, middleware.GetCoupleID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	out := make([]dto.EventDTO, 0, len(events))
	for i := range events {
		out = append(out, dto.NewEventDTO(&events[i]))
	}
	respond(w, http.StatusOK, out)
}

// Select applies the onboarding selection: every selected type gets one live,
// active event and a mood board; every other non-engagement event is
// deactivated.
func (h *EventHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	selections, ok := parseSelections(req.Selections)
	if !ok {
		respondError(w, http.StatusBadRequest, "selections must be a list")
		return
	}
	for _, sel := range selections {
		if respondValidation(w, validateSelection(sel)) {
			return
		}
	}

	coupleID := middleware.GetCoupleID(r.Context())
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		return applySelections(tx, coupleID, selections)
	})
	if err != nil {
		h.logger.Error("event selection failed", "couple_id", coupleID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save selection")
		return
	}

	h.List(w, r)
}

// parseSelections accepts null or a JSON array. Entries that are not objects
// are skipped.
func parseSelections(raw json.RawMessage) ([]dto.EventSelection, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	if trimmed[0] != '[' {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}

	out := make([]dto.EventSelection, 0, len(items))
	for _, item := range items {
		var sel dto.EventSelection
		if err := json.Unmarshal(item, &sel); err != nil {
			continue
		}
		out = append(out, sel)
	}
	return out, true
}

func validateSelection(sel dto.EventSelection) map[string]string {
	return dto.EventPatchRequest{StartDate: sel.StartDate, EndDate: sel.EndDate}.Validate()
}

func applySelections(tx *gorm.DB, coupleID uint, selections []dto.EventSelection) error {
	var types []models.EventType
	if err := tx.Find(&types).Error; err != nil {
		return err
	}
	byKey := make(map[string]*models.EventType, len(types))
	var engagementID uint
	for i := range types {
		byKey[types[i].Key] = &types[i]
		if types[i].Key == models.EngagementKey {
			engagementID = types[i].ID
		}
	}

	keep := make([]uint, 0, len(selections))
	for _, sel := range selections {
		et, ok := byKey[strings.TrimSpace(sel.EventTypeKey)]
		if !ok || et.Key == models.EngagementKey {
			continue
		}

		event, err := upsertSelectedEvent(tx, coupleID, et, sel)
		if err != nil {
			return err
		}
		keep = append(keep, event.ID)

		enabled := et.DefaultMoodboardEnabled
		if sel.EnableMoodboard != nil {
			enabled = *sel.EnableMoodboard
		}
		if err := upsertMoodBoard(tx, event.ID, enabled); err != nil {
			return err
		}
	}

	deactivate := tx.Model(&models.Event{}).Where("couple_id = ?", coupleID)
	if engagementID != 0 {
		deactivate = deactivate.Where("event_type_id <> ?", engagementID)
	}
	if len(keep) > 0 {
		deactivate = deactivate.Where("id NOT IN ?", keep)
	}
	return deactivate.Update("is_active", false).Error
}

// upsertSelectedEvent revives a soft-deleted event of the same type rather
// than inserting a second one.
func upsertSelectedEvent(tx *gorm.DB, coupleID uint, et *models.EventType, sel dto.EventSelection) (*models.Event, error) {
	title := strings.TrimSpace(sel.Title)
	if title == "" {
		title = et.NameEn
	}
	start, _ := dto.ParseDate(sel.StartDate)
	end, _ := dto.ParseDate(sel.EndDate)

	var event models.Event
	err := tx.Unscoped().Where("couple_id = ? AND event_type_id = ?", coupleID, et.ID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		event = models.Event{
			CoupleID:    coupleID,
			EventTypeID: et.ID,
			Title:       title,
			StartDate:   start,
			EndDate:     end,
			IsActive:    true,
		}
		if sel.Description != nil {
			event.Description = *sel.Description
		}
		return &event, tx.Create(&event).Error
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":      title,
		"is_active":  true,
		"deleted_at": nil,
	}
	if sel.Description != nil {
		updates["description"] = *sel.Description
	}
	if start != nil {
		updates["start_date"] = start
	}
	if end != nil {
		updates["end_date"] = end
	}
	if err := tx.Unscoped().Model(&event).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func upsertMoodBoard(tx *gorm.DB, eventID uint, enabled bool) error {
	var board models.MoodBoard
	err := tx.Where("event_id = ?", eventID).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.MoodBoard{EventID: eventID, IsEnabled: enabled}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&board).Update("is_enabled", enabled).Error
}

func (h *EventHandler) Patch(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	var req dto.EventPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartDate != nil {
		event.StartDate, _ = dto.ParseDate(req.StartDate)
	}
	if req.EndDate != nil {
		event.EndDate, _ = dto.ParseDate(req.EndDate)
	}
	if event.StartDate != nil && event.EndDate != nil && time.Time(*event.EndDate).Before(time.Time(*event.StartDate)) {
		respondError(w, http.StatusBadRequest, "end_date: End date must not be before start date")
		return
	}

	db := h.db.WithContext(r.Context())
	if err := db.Save(event).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	if err := db.Preload("EventType").First(event, event.ID).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	respond(w, http.StatusOK, dto.NewEventDTO(event))
}

// Calendar is the flat list of active events.
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.activeEvents(r, middleware.GetCoupleID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	out := make([]dto.CalendarItemDTO, 0, len(events))
	for i := range events {
		out = append(out, dto.NewCalendarItemDTO(&events[i]))
	}
	respond(w, http.StatusOK, out)
}
