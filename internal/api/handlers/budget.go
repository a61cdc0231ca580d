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

type BudgetHandler struct {
	db      *gorm.DB
	targets *targets.Resolver
	logger  *slog.Logger
}

func NewBudgetHandler(db *gorm.DB, targets *targets.Resolver, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{db: db, targets: targets, logger: logger}
}

func getOrCreateBudget(tx *gorm.DB, eventID uint) (*models.EventBudget, error) {
	var budget models.EventBudget
	err := tx.Where(models.EventBudget{EventID: eventID}).
		Attrs(models.EventBudget{CurrencyCode: "USD"}).
		FirstOrCreate(&budget).Error
	return &budget, err
}

func loadBudget(tx *gorm.DB, budgetID uint) (*models.EventBudget, error) {
	var budget models.EventBudget
	err := tx.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Categories.Category").
		Preload("Categories.LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&budget, budgetID).Error
	return &budget, err
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	db := h.db.WithContext(r.Context())
	budget, err := getOrCreateBudget(db, event.ID)
	if err == nil {
		budget, err = loadBudget(db, budget.ID)
	}
	if err != nil {
		h.logger.Error("loading budget failed", "event_id", event.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch budget")
		return
	}
	respond(w, http.StatusOK, dto.NewEventBudgetDTO(budget))
}

// Attach creates the budget if needed and links a catalog category to it.
func (h *BudgetHandler) Attach(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFromURL(w, r, h.db)
	if !ok {
		return
	}

	var req dto.BudgetAttachRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	var budgetID uint
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		budget, err := getOrCreateBudget(tx, event.ID)
		if err != nil {
			return err
		}
		budgetID = budget.ID

		if req.CurrencyCode != "" && req.CurrencyCode != budget.CurrencyCode {
			if err := tx.Model(budget).Update("currency_code", req.CurrencyCode).Error; err != nil {
				return err
			}
		}

		if req.CategoryID == nil || *req.CategoryID == 0 {
			return nil
		}
		var category models.BudgetCategory
		if err := tx.First(&category, *req.CategoryID).Error; err != nil {
			return err
		}
		var link models.EventBudgetCategory
		return tx.Where(models.EventBudgetCategory{EventBudgetID: budget.ID, CategoryID: category.ID}).
			FirstOrCreate(&link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.logger.Error("attaching budget category failed", "event_id", event.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update budget")
		return
	}

	budget, err := loadBudget(h.db.WithContext(r.Context()), budgetID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch budget")
		return
	}
	respond(w, http.StatusCreated, dto.NewEventBudgetDTO(budget))
}

// CreateLineItem adds a line item under an event budget category owned by
// the caller's couple.
func (h *BudgetHandler) CreateLineItem(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := urlID(r, "categoryID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	ctx := r.Context()
	coupleID := middleware.GetCoupleID(ctx)
	db := h.db.WithContext(ctx)

	var link models.EventBudgetCategory
	err := db.
		Joins("JOIN event_budgets ON event_budgets.id = event_budget_categories.event_budget_id").
		Joins("JOIN events ON events.id = event_budgets.event_id AND events.deleted_at IS NULL").
		Where("event_budget_categories.id = ? AND events.couple_id = ?", categoryID, coupleID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, msgNotFound)
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch budget category")
		}
		return
	}

	var req dto.LineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	if req.ReceiptMediaID != nil {
		var count int64
		if err := db.Model(&models.MediaFile{}).
			Where("id = ? AND couple_id = ?", *req.ReceiptMediaID, coupleID).
			Count(&count).Error; err != nil || count == 0 {
			respondError(w, http.StatusBadRequest, "receipt_media: Invalid media file")
			return
		}
	}

	paidOn, _ := dto.ParseDate(req.PaidOn)
	userID := middleware.GetUserID(ctx)
	item := models.BudgetLineItem{
		EventBudgetCategoryID: link.ID,
		Label:                 strings.TrimSpace(req.Label),
		PlannedAmount:         dto.ToNullDecimal(req.PlannedAmount),
		ActualAmount:          dto.ToNullDecimal(req.ActualAmount),
		Notes:                 req.Notes,
		PaidOn:                paidOn,
		ReceiptMediaID:        req.ReceiptMediaID,
		CreatedByID:           &userID,
	}
	if err := db.Create(&item).Error; err != nil {
		h.logger.Error("creating line item failed", "category_id", link.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create line item")
		return
	}
	respond(w, http.StatusCreated, dto.NewBudgetLineItemDTO(&item))
}

func (h *BudgetHandler) DeleteLineItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlID(r, "itemID")
	if !ok {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	record, err := h.targets.Resolve(r.Context(), middleware.GetCoupleID(r.Context()), targets.Ref{Kind: targets.KindBudgetLineItem, ID: itemID})
	if err != nil {
		respondTargetError(w, err)
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(record.(*models.BudgetLineItem)).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete line item")
		return
	}
	respond(w, http.StatusOK, dto.Deleted{Deleted: true})
}
