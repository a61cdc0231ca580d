package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attachCategory(t *testing.T, env *testEnv, eventID uint, key string) dto.EventBudgetCategoryDTO {
	t.Helper()

	category := testutil.BudgetCategory(t, env.DB, key)
	rr := env.do(t, "POST", fmt.Sprintf("/api/events/%d/budget/", eventID), map[string]interface{}{"category_id": category.ID}, env.Token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var budget dto.EventBudgetDTO
	testutil.DecodeEnvelope(t, rr, &budget)
	for _, c := range budget.Categories {
		if c.Category != nil && c.Category.Key == key {
			return c
		}
	}
	t.Fatalf("category %s not attached", key)
	return dto.EventBudgetCategoryDTO{}
}

func TestBudgetHandler_GetAndAttach(t *testing.T) {
	env := setupTestRouter(t)
	event := testutil.CreateTestEvent(t, env.DB, env.Couple.ID, "malka")
	path := fmt.Sprintf("/api/events/%d/budget/", event.ID)

	t.Run("get creates an empty budget once", func(t *testing.T) {
		rr := env.do(t, "GET", path, nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var first dto.EventBudgetDTO
		testutil.DecodeEnvelope(t, rr, &first)
		assert.Equal(t, event.ID, first.Event)
		assert.Equal(t, "USD", first.CurrencyCode)
		assert.Equal(t, "0.00", first.TotalPlanned)
		assert.Empty(t, first.Categories)

		rr = env.do(t, "GET", path, nil, env.Token)
		var second dto.EventBudgetDTO
		testutil.DecodeEnvelope(t, rr, &second)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("attach is idempotent", func(t *testing.T) {
		attachCategory(t, env, event.ID, "venue")
		attachCategory(t, env, event.ID, "venue")
		attachCategory(t, env, event.ID, "catering")

		var count int64
		env.DB.Model(&models.EventBudgetCategory{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("currency update", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]string{"currency_code": "OMR"}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code)

		var budget dto.EventBudgetDTO
		testutil.DecodeEnvelope(t, rr, &budget)
		assert.Equal(t, "OMR", budget.CurrencyCode)
	})

	t.Run("invalid currency", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]string{"currency_code": "omr"}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, testutil.DecodeEnvelope(t, rr, nil), "currency_code:")
	})

	t.Run("unknown category", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]interface{}{"category_id": 99999}, env.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("deleted event", func(t *testing.T) {
		gone := testutil.CreateTestEvent(t, env.DB, env.Couple.ID, "henna_night")
		require.NoError(t, env.DB.Delete(gone).Error)

		rr := env.do(t, "GET", fmt.Sprintf("/api/events/%d/budget/", gone.ID), nil, env.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("other couple's event", func(t *testing.T) {
		_, _, token := env.NewOutsider(t)
		rr := env.do(t, "GET", path, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestBudgetHandler_LineItems(t *testing.T) {
	env := setupTestRouter(t)
	event := testutil.CreateTestEvent(t, env.DB, env.Couple.ID, "malka")
	venue := attachCategory(t, env, event.ID, "venue")
	itemsPath := fmt.Sprintf("/api/budget/categories/%d/items/", venue.ID)

	var created dto.BudgetLineItemDTO

	t.Run("create", func(t *testing.T) {
		media := testutil.CreateTestMedia(t, env.DB, env.Couple.ID)
		rr := env.do(t, "POST", itemsPath, map[string]interface{}{
			"label":          "Hall deposit",
			"planned_amount": "1500",
			"actual_amount":  1200.5,
			"paid_on":        "2026-02-01",
			"receipt_media":  media.ID,
		}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		testutil.DecodeEnvelope(t, rr, &created)
		assert.Equal(t, "Hall deposit", created.Label)
		require.NotNil(t, created.PlannedAmount)
		assert.Equal(t, "1500.00", *created.PlannedAmount)
		require.NotNil(t, created.ActualAmount)
		assert.Equal(t, "1200.50", *created.ActualAmount)
		require.NotNil(t, created.PaidOn)
		assert.Equal(t, "2026-02-01", *created.PaidOn)
		require.NotNil(t, created.CreatedBy)
		assert.Equal(t, env.User.ID, *created.CreatedBy)
	})

	t.Run("amounts are optional", func(t *testing.T) {
		rr := env.do(t, "POST", itemsPath, map[string]string{"label": "Chairs"}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code)

		var item dto.BudgetLineItemDTO
		testutil.DecodeEnvelope(t, rr, &item)
		assert.Nil(t, item.PlannedAmount)
		assert.Nil(t, item.ActualAmount)
	})

	t.Run("validation", func(t *testing.T) {
		rr := env.do(t, "POST", itemsPath, map[string]interface{}{"planned_amount": -5}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		msg := testutil.DecodeEnvelope(t, rr, nil)
		assert.Contains(t, msg, "label:")
		assert.Contains(t, msg, "planned_amount:")
	})

	t.Run("sub-cent amounts are rejected", func(t *testing.T) {
		rr := env.do(t, "POST", itemsPath, map[string]interface{}{
			"label":          "Florist",
			"planned_amount": "10.005",
			"actual_amount":  "10.500",
		}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "planned_amount: Ensure that there are no more than 2 decimal places", testutil.DecodeEnvelope(t, rr, nil))

		var count int64
		env.DB.Model(&models.BudgetLineItem{}).Where("label = ?", "Florist").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("receipt from another couple", func(t *testing.T) {
		_, outsiderCouple, _ := env.NewOutsider(t)
		media := testutil.CreateTestMedia(t, env.DB, outsiderCouple.ID)

		rr := env.do(t, "POST", itemsPath, map[string]interface{}{"label": "x", "receipt_media": media.ID}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("category of another couple", func(t *testing.T) {
		_, _, token := env.NewOutsider(t)
		rr := env.do(t, "POST", itemsPath, map[string]string{"label": "x"}, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("soft delete", func(t *testing.T) {
		rr := env.do(t, "DELETE", fmt.Sprintf("/api/budget/items/%d/", created.ID), nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.Deleted
		testutil.DecodeEnvelope(t, rr, &resp)
		assert.True(t, resp.Deleted)

		var count int64
		env.DB.Unscoped().Model(&models.BudgetLineItem{}).Where("id = ?", created.ID).Count(&count)
		assert.Equal(t, int64(1), count)

		rr = env.do(t, "GET", fmt.Sprintf("/api/events/%d/budget/", event.ID), nil, env.Token)
		var budget dto.EventBudgetDTO
		testutil.DecodeEnvelope(t, rr, &budget)
		require.Len(t, budget.Categories, 1)
		for _, li := range budget.Categories[0].LineItems {
			assert.NotEqual(t, created.ID, li.ID)
		}

		rr = env.do(t, "DELETE", fmt.Sprintf("/api/budget/items/%d/", created.ID), nil, env.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHoneymoonHandler(t *testing.T) {
	env := setupTestRouter(t)
	event := testutil.CreateTestEvent(t, env.DB, env.Couple.ID, "honeymoon")
	path := fmt.Sprintf("/api/events/%d/honeymoon/", event.ID)

	var plan dto.HoneymoonPlanDTO

	t.Run("get creates the plan", func(t *testing.T) {
		rr := env.do(t, "GET", path, nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		testutil.DecodeEnvelope(t, rr, &plan)
		assert.Equal(t, event.ID, plan.Event)
		assert.Empty(t, plan.Items)
	})

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]interface{}{
			"destination_country": "Indonesia",
			"destination_city":    "Bali",
			"start_date":          "2026-06-01",
			"total_planned":       "3000",
		}, env.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = env.do(t, "POST", path, map[string]string{"notes": "Window seats"}, env.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var updated dto.HoneymoonPlanDTO
		testutil.DecodeEnvelope(t, rr, &updated)
		assert.Equal(t, plan.ID, updated.ID)
		assert.Equal(t, "Bali", updated.DestinationCity)
		assert.Equal(t, "Window seats", updated.Notes)
		assert.Equal(t, "3000.00", updated.TotalPlanned)
		require.NotNil(t, updated.StartDate)
		assert.Equal(t, "2026-06-01", *updated.StartDate)
	})

	t.Run("invalid dates", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]string{"start_date": "2026-06-10", "end_date": "2026-06-01"}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("sub-cent total", func(t *testing.T) {
		rr := env.do(t, "POST", path, map[string]string{"total_spent": "99.999"}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "total_spent: Ensure that there are no more than 2 decimal places", testutil.DecodeEnvelope(t, rr, nil))
	})

	itemsPath := fmt.Sprintf("/api/honeymoon/%d/items/", plan.ID)
	var item dto.HoneymoonItemDTO

	t.Run("create item", func(t *testing.T) {
		rr := env.do(t, "POST", itemsPath, map[string]interface{}{
			"label":          "Villa",
			"planned_amount": "900.00",
		}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		testutil.DecodeEnvelope(t, rr, &item)
		assert.Equal(t, "other", item.Type)
		assert.Equal(t, "Villa", item.Label)
		require.NotNil(t, item.PlannedAmount)
		assert.Equal(t, "900.00", *item.PlannedAmount)
	})

	t.Run("invalid item type", func(t *testing.T) {
		rr := env.do(t, "POST", itemsPath, map[string]string{"label": "Boat", "type": "cruise"}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, testutil.DecodeEnvelope(t, rr, nil), "type:")
	})

	t.Run("other couple's plan", func(t *testing.T) {
		_, _, token := env.NewOutsider(t)
		rr := env.do(t, "POST", itemsPath, map[string]string{"label": "x"}, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = env.do(t, "DELETE", fmt.Sprintf("/api/honeymoon/items/%d/", item.ID), nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete item", func(t *testing.T) {
		rr := env.do(t, "DELETE", fmt.Sprintf("/api/honeymoon/items/%d/", item.ID), nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = env.do(t, "GET", path, nil, env.Token)
		var got dto.HoneymoonPlanDTO
		testutil.DecodeEnvelope(t, rr, &got)
		assert.Empty(t, got.Items)
	})
}
