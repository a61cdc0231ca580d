package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/muse/internal/api/handlers"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/couples"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/storage"
	"github.com/hugh/muse/internal/targets"
	"github.com/hugh/muse/internal/testutil"
)

type testEnv struct {
	*testutil.TestSetup
	Router *chi.Mux
	Store  *storage.MemoryStore
}

// setupTestRouter mounts every API handler behind the same middleware the
// server uses, minus rate limiting and metrics.
func setupTestRouter(t *testing.T) *testEnv {
	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)

	logger := testutil.DiscardLogger()
	store := storage.NewMemoryStore()
	coupleResolver := couples.NewResolver(tc.DB)
	targetResolver := targets.NewResolver(tc.DB)

	healthHandler := handlers.NewHealthHandler(tc.DB, nil)
	authHandler := handlers.NewAuthHandler(tc.AuthService, coupleResolver, handlers.CookieConfig{MaxAge: 14 * 24 * time.Hour}, logger)
	catalogHandler := handlers.NewCatalogHandler(tc.DB)
	eventHandler := handlers.NewEventHandler(tc.DB, logger)
	budgetHandler := handlers.NewBudgetHandler(tc.DB, targetResolver, logger)
	honeymoonHandler := handlers.NewHoneymoonHandler(tc.DB, targetResolver, logger)
	mediaHandler := handlers.NewMediaHandler(tc.DB, store, logger)
	moodBoardHandler := handlers.NewMoodBoardHandler(tc.DB, targetResolver, logger)
	commentHandler := handlers.NewCommentHandler(tc.DB, targetResolver, logger)
	activityHandler := handlers.NewActivityHandler(tc.DB, targetResolver, logger)
	taskHandler := handlers.NewTaskHandler(tc.DB, targetResolver, logger)
	notificationHandler := handlers.NewNotificationHandler(tc.DB)
	dashboardHandler := handlers.NewDashboardHandler(tc.DB, logger)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping/", healthHandler.Ping)
		r.Post("/auth/signup/", authHandler.Signup)
		r.Post("/auth/login/", authHandler.Login)
		r.Post("/auth/refresh/", authHandler.Refresh)
		r.Post("/auth/logout/", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tc.JWTService, tc.AuthService))

			r.Post("/auth/password/change/", authHandler.ChangePassword)
			r.Get("/auth/me/", authHandler.Me)
			r.Get("/events/types/", catalogHandler.EventTypes)
			r.Get("/budget/categories/", catalogHandler.BudgetCategories)
			r.Get("/notifications/", notificationHandler.List)
			r.Post("/notifications/", notificationHandler.MarkRead)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCouple(coupleResolver))

				r.Get("/events/", eventHandler.List)
				r.Post("/events/selection/", eventHandler.Select)
				r.Patch("/events/{eventID}/", eventHandler.Patch)
				r.Get("/calendar/", eventHandler.Calendar)
				r.Get("/events/{eventID}/budget/", budgetHandler.Get)
				r.Post("/events/{eventID}/budget/", budgetHandler.Attach)
				r.Post("/budget/categories/{categoryID}/items/", budgetHandler.CreateLineItem)
				r.Delete("/budget/items/{itemID}/", budgetHandler.DeleteLineItem)
				r.Get("/events/{eventID}/honeymoon/", honeymoonHandler.Get)
				r.Post("/events/{eventID}/honeymoon/", honeymoonHandler.Update)
				r.Post("/honeymoon/{planID}/items/", honeymoonHandler.CreateItem)
				r.Delete("/honeymoon/items/{itemID}/", honeymoonHandler.DeleteItem)
				r.Post("/media/upload/", mediaHandler.Upload)
				r.Get("/moodboard/{eventID}/", moodBoardHandler.Get)
				r.Post("/moodboard/{eventID}/items/", moodBoardHandler.CreateItem)
				r.Delete("/moodboard/items/{itemID}/", moodBoardHandler.DeleteItem)
				r.Post("/moodboard/items/{itemID}/reactions/", moodBoardHandler.AddReaction)
				r.Delete("/moodboard/items/{itemID}/reactions/", moodBoardHandler.RemoveReaction)
				r.Get("/comments/", commentHandler.List)
				r.Post("/comments/", commentHandler.Create)
				r.Delete("/comments/{commentID}/", commentHandler.Delete)
				r.Get("/activity/", activityHandler.List)
				r.Post("/activity/", activityHandler.Create)
				r.Get("/tasks/", taskHandler.List)
				r.Post("/tasks/", taskHandler.Create)
				r.Patch("/tasks/{taskID}/", taskHandler.Patch)
				r.Delete("/tasks/{taskID}/", taskHandler.Delete)
				r.Get("/dashboard/summary/", dashboardHandler.Summary)
			})
		})
	})

	return &testEnv{TestSetup: tc, Router: r, Store: store}
}

// do sends a JSON request as token's owner.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// newLoner creates a user with no couple membership.
func (e *testEnv) newLoner(t *testing.T) (*models.User, string) {
	t.Helper()
	user := testutil.CreateTestUser(t, e.DB)
	return user, testutil.GenerateTestToken(t, e.JWTService, user)
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
