package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func benchBudget(categories, items int) *models.EventBudget {
	budget := &models.EventBudget{
		Base:         models.Base{ID: 1, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		EventID:      1,
		CurrencyCode: "OMR",
		TotalPlanned: decimal.NewFromInt(12000),
		TotalSpent:   decimal.NewFromInt(4500),
	}
	paid := datatypes.Date(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	for c := 0; c < categories; c++ {
		cat := models.EventBudgetCategory{
			Base:          models.Base{ID: uint(c + 1)},
			EventBudgetID: 1,
			CategoryID:    uint(c + 1),
			PlannedAmount: decimal.NewFromInt(1000),
			Category:      &models.BudgetCategory{Base: models.Base{ID: uint(c + 1)}, Key: "venue", Label: "Venue"},
		}
		for i := 0; i < items; i++ {
			cat.LineItems = append(cat.LineItems, models.BudgetLineItem{
				Base:                  models.Base{ID: uint(c*items + i + 1)},
				EventBudgetCategoryID: cat.ID,
				Label:                 "Deposit",
				PlannedAmount:         decimal.NewNullDecimal(decimal.RequireFromString("250.50")),
				PaidOn:                &paid,
			})
		}
		budget.Categories = append(budget.Categories, cat)
	}
	return budget
}

// BenchmarkJSONSerialization benchmarks JSON encoding of common response types
func BenchmarkJSONSerialization(b *testing.B) {
	b.Run("ErrorEnvelope", func(b *testing.B) {
		resp := dto.Err(dto.JoinErrors(map[string]string{
			"email":    "Enter a valid email address",
			"password": "Password must be at least 8 characters",
		}))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("EventBudget", func(b *testing.B) {
		resp := dto.OK(dto.NewEventBudgetDTO(benchBudget(10, 5)))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("MoodBoard", func(b *testing.B) {
		board := &models.MoodBoard{Base: models.Base{ID: 1}, EventID: 1, IsEnabled: true}
		for i := 0; i < 30; i++ {
			board.Items = append(board.Items, models.MoodBoardItem{
				Base:      models.Base{ID: uint(i + 1)},
				Media:     &models.MediaFile{Base: models.Base{ID: uint(i + 1)}, URL: "http://localhost/media/x.png"},
				Caption:   "Inspiration",
				Reactions: []models.MoodBoardReaction{{ReactionType: "heart"}, {ReactionType: "heart"}},
			})
		}
		resp := dto.OK(dto.NewMoodBoardDTO(board))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})
}

// BenchmarkRequestParsing benchmarks JSON decoding of common request types
func BenchmarkRequestParsing(b *testing.B) {
	b.Run("SignupRequest", func(b *testing.B) {
		jsonData := `{"email":"sara@example.com","password":"securepassword123","full_name":"Sara","role":"bride","partner_email":"omar@example.com"}`
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.SignupRequest
			_ = json.NewDecoder(strings.NewReader(jsonData)).Decode(&req)
		}
	})

	b.Run("Selections", func(b *testing.B) {
		raw := json.RawMessage(`[{"eventTypeKey":"malka"},{"eventTypeKey":"henna_night","enableMoodboard":false},{"eventTypeKey":"honeymoon","start_date":"2026-06-01"}]`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = parseSelections(raw)
		}
	})

	b.Run("LineItemRequest", func(b *testing.B) {
		jsonData := []byte(`{"label":"Hall deposit","planned_amount":"1500.00","actual_amount":"1200.50","paid_on":"2026-02-01"}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.LineItemRequest
			_ = json.Unmarshal(jsonData, &req)
		}
	})
}

// BenchmarkRequestValidation benchmarks request validation
func BenchmarkRequestValidation(b *testing.B) {
	b.Run("SignupRequestValid", func(b *testing.B) {
		req := dto.SignupRequest{
			Email:    "sara@example.com",
			Password: "securepassword123",
			FullName: "Sara",
			Role:     "bride",
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})

	b.Run("SignupRequestInvalid", func(b *testing.B) {
		req := dto.SignupRequest{
			Email:            "invalid-email",
			Password:         "short",
			PartnerFirstName: strings.Repeat("x", 200),
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})

	b.Run("TaskCreateRequest", func(b *testing.B) {
		due := "2026-05-01"
		req := dto.TaskCreateRequest{Title: "Book venue", Status: "in_progress", DueDate: &due}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})
}

// BenchmarkRespond benchmarks the envelope writers
func BenchmarkRespond(b *testing.B) {
	b.Run("Small", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			respond(w, http.StatusOK, dto.Deleted{Deleted: true})
		}
	})

	b.Run("Large", func(b *testing.B) {
		budget := dto.NewEventBudgetDTO(benchBudget(13, 20))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			respond(w, http.StatusOK, budget)
		}
	})

	b.Run("Error", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			respondError(w, http.StatusNotFound, msgNotFound)
		}
	})
}
