package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/targets"
	"gorm.io/gorm"
)

type HoneymoonHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewHoneymoonHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *HoneymoonHandler {
	return &HoneymoonHandler{db: db, targets: targets, logger: logger}
}

func getOrCreatePlan(tx *gorm.DB, eventID uint) (*models.HoneymoonPlan, error) {
	var plan models.HoneymoonPlan
	err := tx.Where(models.HoneymoonPlan{EventID: eventID}).FirstOrCreate(&plan).Error
	return &plan, err
}

func loadPlan(tx *gorm.DB, planID uint) (*models.HoneymoonPlan, error) {
	var plan models.HoneymoonPlan
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&plan, planID).Error
	return &plan, err
}

func (h *HoneymoonHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	db := h.db.WithContext(r.Context())
	plan, err := getOrCreatePlan(db, event.ID)
	if err == nil {
		plan, err = loadPlan(db, plan.ID)
	}
	if err != nil {
		h.logger.Error("loading honeymoon plan failed", "event_id", event.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch honeymoon plan")
		return
	}
	respond(w, http.StatusOK, dto.NewHoneymoonPlanDTO(plan))
}

// Update applies a partial update; absent fields keep their value.
func (h *HoneymoonHandler) Update(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	var req dto.HoneymoonPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	db := h.db.WithContext(r.Context())
	plan, err := getOrCreatePlan(db, event.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch honeymoon plan")
		return
	}

	if req.DestinationCountry != nil {
		plan.DestinationCountry = strings.TrimSpace(*req.DestinationCountry)
	}
	if req.DestinationCity != nil {
		plan.DestinationCity = strings.TrimSpace(*req.DestinationCity)
	}
	if req.StartDate != nil {
		plan.StartDate, _ = dto.ParseDate(req.StartDate)
	}
	if req.EndDate != nil {
		plan.EndDate, _ = dto.ParseDate(req.EndDate)
	}
	if req.Notes != nil {
		plan.Notes = *req.Notes
	}
	if req.TotalPlanned != nil {
		plan.TotalPlanned = *req.TotalPlanned
	}
	if req.TotalSpent != nil {
		plan.TotalSpent = *req.TotalSpent
	}

	if err := db.Save(plan).Error; err != nil {
		h.logger.Error("saving honeymoon plan failed", "plan_id", plan.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update honeymoon plan")
		return
	}

	plan, err = loadPlan(db, plan.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch honeymoon plan")
		return
	}
	respond(w, http.StatusOK, dto.NewHoneymoonPlanDTO(plan))
}

func (h *HoneymoonHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	planID, ok := urlID(r, "planID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	db := h.db.WithContext(r.Context())
	var plan models.HoneymoonPlan
	err := db.
		Joins("JOIN events ON events.id = honeymoon_plans.event_id AND events.deleted_at IS NULL").
		Where("honeymoon_plans.id = ? AND events.couple_id = ?", planID, middleware.GetCoupleID(r.Context())).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, msgNotFound)
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch honeymoon plan")
		}
		return
	}

	var req dto.HoneymoonItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	itemType := models.HoneymoonItemType(req.Type)
	if itemType == "" {
		itemType = models.HoneymoonItemOther
	}
	start, _ := dto.ParseDate(req.StartDate)
	end, _ := dto.ParseDate(req.EndDate)

	item := models.HoneymoonItem{
		HoneymoonPlanID: plan.ID,
		Type:            itemType,
		Label:           strings.TrimSpace(req.Label),
		StartDate:       start,
		EndDate:         end,
		PlannedAmount:   dto.ToNullDecimal(req.PlannedAmount),
		ActualAmount:    dto.ToNullDecimal(req.ActualAmount),
		ProviderName:    req.ProviderName,
		BookingRef:      req.BookingRef,
		Notes:           req.Notes,
	}
	if err := db.Create(&item).Error; err != nil {
		h.logger.Error("creating honeymoon item failed", "plan_id", plan.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create honeymoon item")
		return
	}
	respond(w, http.StatusCreated, dto.NewHoneymoonItemDTO(&item))
}

func (h *HoneymoonHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlID(r, "itemID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	record, err := h.targets.Resolve(r.Context(), middleware.GetCoupleID(r.Context()), targets.Ref{Kind: targets.KindHoneymoonItem, ID: itemID})
	if err != nil {
		respondTargetError(w, err)
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(record.(*models.HoneymoonItem)).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete honeymoon item")
		return
	}
	respond(w, http.StatusOK, dto.Deleted{Deleted: true})
}
