package handlers

import (
	"net/http"
	"strings"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// EventTypes lists the catalog. With onboardingOnly set, engagement is left
// out since it is never picked during onboarding.
func (h *CatalogHandler) EventTypes(w http.ResponseWriter, r *http.Request) {
	query := h.db.WithContext(r.Context()).Order("id ASC")
	switch strings.ToLower(r.URL.Query().Get("onboardingOnly")) {
	case "true", "1", "yes":
		query = query.Where("key <> ?", models.EngagementKey)
	}

	var types []models.EventType
	if err := query.Find(&types).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch event types")
		return
	}

	out := make([]dto.EventTypeDTO, 0, len(types))
	for i := range types {
		out = append(out, dto.NewEventTypeDTO(&types[i]))
	}
	respond(w, http.StatusOK, out)
}

func (h *CatalogHandler) BudgetCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.BudgetCategory
	if err := h.db.WithContext(r.Context()).Order("sort_order ASC, id ASC").Find(&categories).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch budget categories")
		return
	}

	out := make([]dto.BudgetCategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, dto.NewBudgetCategoryDTO(&categories[i]))
	}
	respond(w, http.StatusOK, out)
}
