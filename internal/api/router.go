package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/muse/internal/api/handlers"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/couples"
	"github.com/hugh/muse/internal/storage"
	"github.com/hugh/muse/internal/targets"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Store          storage.Store
	Metrics        *middleware.Metrics
	MediaDir       string   // served under /media/ when set
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	Debug          bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(middleware.NewLimiter(cfg.Redis, "ratelimit:ip", cfg.RateLimitReqs, cfg.RateLimitSecs)))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	coupleResolver := couples.NewResolver(cfg.DB)
	targetResolver := targets.NewResolver(cfg.DB)
	cookie := handlers.CookieConfig{
		Secure: !cfg.Debug,
		MaxAge: cfg.JWTService.RefreshTTL(),
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, coupleResolver, cookie, cfg.Logger)
	catalogHandler := handlers.NewCatalogHandler(cfg.DB)
	eventHandler := handlers.NewEventHandler(cfg.DB, cfg.Logger)
	budgetHandler := handlers.NewBudgetHandler(cfg.DB, targetResolver, cfg.Logger)
	honeymoonHandler := handlers.NewHoneymoonHandler(cfg.DB, targetResolver, cfg.Logger)
	mediaHandler := handlers.NewMediaHandler(cfg.DB, cfg.Store, cfg.Logger)
	moodBoardHandler := handlers.NewMoodBoardHandler(cfg.DB, targetResolver, cfg.Logger)
	commentHandler := handlers.NewCommentHandler(cfg.DB, targetResolver, cfg.Logger)
	activityHandler := handlers.NewActivityHandler(cfg.DB, targetResolver, cfg.Logger)
	taskHandler := handlers.NewTaskHandler(cfg.DB, targetResolver, cfg.Logger)
	notificationHandler := handlers.NewNotificationHandler(cfg.DB)
	dashboardHandler := handlers.NewDashboardHandler(cfg.DB, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	if cfg.MediaDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.MediaDir))
		r.Handle("/media/*", http.StripPrefix("/media/", fileServer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping/", healthHandler.Ping)

		// Public auth endpoints
		r.Post("/auth/signup/", authHandler.Signup)
		r.Post("/auth/login/", authHandler.Login)
		r.Post("/auth/refresh/", authHandler.Refresh)
		r.Post("/auth/logout/", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByUser(middleware.NewLimiter(cfg.Redis, "ratelimit:user", cfg.RateLimitReqs, cfg.RateLimitSecs)))
			}

			r.Post("/auth/password/change/", authHandler.ChangePassword)
			r.Get("/auth/me/", authHandler.Me)
			r.Get("/events/types/", catalogHandler.EventTypes)
			r.Get("/budget/categories/", catalogHandler.BudgetCategories)
			r.Get("/notifications/", notificationHandler.List)
			r.Post("/notifications/", notificationHandler.MarkRead)

			// Everything below is scoped to the caller's active couple
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCouple(coupleResolver))

				r.Get("/dashboard/summary/", dashboardHandler.Summary)
				r.Get("/calendar/", eventHandler.Calendar)

				r.Route("/events", func(r chi.Router) {
					r.Get("/", eventHandler.List)
					r.Post("/selection/", eventHandler.Select)
					r.Patch("/{eventID}/", eventHandler.Patch)
					r.Get("/{eventID}/budget/", budgetHandler.Get)
					r.Post("/{eventID}/budget/", budgetHandler.Attach)
					r.Get("/{eventID}/honeymoon/", honeymoonHandler.Get)
					r.Post("/{eventID}/honeymoon/", honeymoonHandler.Update)
				})

				r.Post("/budget/categories/{categoryID}/items/", budgetHandler.CreateLineItem)
				r.Delete("/budget/items/{itemID}/", budgetHandler.DeleteLineItem)

				r.Post("/honeymoon/{planID}/items/", honeymoonHandler.CreateItem)
				r.Delete("/honeymoon/items/{itemID}/", honeymoonHandler.DeleteItem)

				r.Post("/media/upload/", mediaHandler.Upload)

				r.Route("/moodboard", func(r chi.Router) {
					r.Get("/{eventID}/", moodBoardHandler.Get)
					r.Post("/{eventID}/items/", moodBoardHandler.CreateItem)
					r.Delete("/items/{itemID}/", moodBoardHandler.DeleteItem)
					r.Post("/items/{itemID}/reactions/", moodBoardHandler.AddReaction)
					r.Delete("/items/{itemID}/reactions/", moodBoardHandler.RemoveReaction)
				})

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", commentHandler.List)
					r.Post("/", commentHandler.Create)
					r.Delete("/{commentID}/", commentHandler.Delete)
				})

				r.Get("/activity/", activityHandler.List)
				r.Post("/activity/", activityHandler.Create)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.List)
					r.Post("/", taskHandler.Create)
					r.Patch("/{taskID}/", taskHandler.Patch)
					r.Delete("/{taskID}/", taskHandler.Delete)
				})
			})
		})
	})

	return &Router{r}
}
