package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dashboardUpcoming   = 5
	dashboardHighlights = 5
	dashboardActivity   = 10
)

type DashboardHandler struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardHandler(db *gorm.DB, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, logger: logger, now: time.Now}
}

// Summary assembles the couple's overview in one response.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	coupleID := middleware.GetCoupleID(r.Context())
	db := h.db.WithContext(r.Context())

	summary := dto.DashboardSummary{
		UpcomingEvents:      []dto.CalendarItemDTO{},
		MoodboardHighlights: []dto.MoodHighlight{},
		RecentActivity:      []dto.ActivityDTO{},
	}

	steps := []struct {
		name string
		fn   func(*gorm.DB, uint, *dto.DashboardSummary) error
	}{
		{"upcoming events", h.upcomingEvents},
		{"budget totals", budgetTotals},
		{"honeymoon", latestHoneymoon},
		{"mood highlights", moodHighlights},
		{"recent activity", recentActivity},
	}
	for _, step := range steps {
		if err := step.fn(db, coupleID, &summary); err != nil {
			h.logger.Error("building dashboard failed", "step", step.name, "couple_id", coupleID, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to build dashboard")
			return
		}
	}

	respond(w, http.StatusOK, summary)
}

func (h *DashboardHandler) upcomingEvents(db *gorm.DB, coupleID uint, out *dto.DashboardSummary) error {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var events []models.Event
	err := db.Preload("EventType").
		Where("couple_id = ? AND is_active = ? AND start_date IS NOT NULL AND start_date >= ?", coupleID, true, today).
		Order("start_date ASC, id ASC").
		Limit(dashboardUpcoming).
		Find(&events).Error
	if err != nil {
		return err
	}
	for i := range events {
		out.UpcomingEvents = append(out.UpcomingEvents, dto.NewCalendarItemDTO(&events[i]))
	}
	return nil
}

func budgetTotals(db *gorm.DB, coupleID uint, out *dto.DashboardSummary) error {
	var rows []models.EventBudgetCategory
	err := db.
		Select("event_budget_categories.planned_amount, event_budget_categories.spent_amount").
		Joins("JOIN event_budgets ON event_budgets.id = event_budget_categories.event_budget_id").
		Joins("JOIN events ON events.id = event_budgets.event_id AND events.deleted_at IS NULL").
		Where("events.couple_id = ?", coupleID).
		Find(&rows).Error
	if err != nil {
		return err
	}

	planned, spent := decimal.Zero, decimal.Zero
	for _, row := range rows {
		planned = planned.Add(row.PlannedAmount)
		spent = spent.Add(row.SpentAmount)
	}
	out.Budget = dto.BudgetTotals{Planned: dto.Money(planned), Spent: dto.Money(spent)}
	return nil
}

func latestHoneymoon(db *gorm.DB, coupleID uint, out *dto.DashboardSummary) error {
	var plan models.HoneymoonPlan
	err := db.
		Joins("JOIN events ON events.id = honeymoon_plans.event_id AND events.deleted_at IS NULL").
		Where("events.couple_id = ?", coupleID).
		Order("honeymoon_plans.updated_at DESC, honeymoon_plans.id DESC").
		Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	out.Honeymoon = &dto.HoneymoonSummary{
		ID:                 plan.ID,
		EventID:            plan.EventID,
		DestinationCountry: plan.DestinationCountry,
		DestinationCity:    plan.DestinationCity,
		StartDate:          dto.FormatDate(plan.StartDate),
		EndDate:            dto.FormatDate(plan.EndDate),
		TotalPlanned:       dto.Money(plan.TotalPlanned),
		TotalSpent:         dto.Money(plan.TotalSpent),
	}
	return nil
}

func moodHighlights(db *gorm.DB, coupleID uint, out *dto.DashboardSummary) error {
	var items []models.MoodBoardItem
	err := db.
		Preload("Media").
		Preload("MoodBoard").
		Joins("JOIN mood_boards ON mood_boards.id = mood_board_items.mood_board_id").
		Joins("JOIN events ON events.id = mood_boards.event_id AND events.deleted_at IS NULL").
		Where("events.couple_id = ?", coupleID).
		Order("mood_board_items.created_at DESC, mood_board_items.id DESC").
		Limit(dashboardHighlights).
		Find(&items).Error
	if err != nil {
		return err
	}

	for _, item := range items {
		hl := dto.MoodHighlight{
			ID:        item.ID,
			Caption:   item.Caption,
			CreatedAt: item.CreatedAt,
		}
		if item.MoodBoard != nil {
			hl.EventID = item.MoodBoard.EventID
		}
		if item.Media != nil {
			hl.MediaURL = item.Media.URL
		}
		out.MoodboardHighlights = append(out.MoodboardHighlights, hl)
	}
	return nil
}

func recentActivity(db *gorm.DB, coupleID uint, out *dto.DashboardSummary) error {
	var entries []models.ActivityLog
	err := db.Where("couple_id = ?", coupleID).
		Order("created_at DESC, id DESC").
		Limit(dashboardActivity).
		Find(&entries).Error
	if err != nil {
		return err
	}
	for i := range entries {
		out.RecentActivity = append(out.RecentActivity, dto.NewActivityDTO(&entries[i]))
	}
	return nil
}
