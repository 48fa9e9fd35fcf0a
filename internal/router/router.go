package router

import (
	"context"
	"net/http"
	"time"

	pointsapi "opphub/internal/handlers/api/v1/points"
	"opphub/internal/cache"
	"opphub/internal/database"
	"opphub/internal/middleware"
	"opphub/internal/response"
	"opphub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// New configures all HTTP routes and returns the main handler.
func New(
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	db *database.Manager,
	c cache.Cache,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/health", healthHandler(db, c, responseBuilder))

	controller := pointsapi.NewPointsController(serviceCollection, logger.Named("points_api"), responseBuilder)

	r.Route("/api/v1/points", func(r chi.Router) {
		// Public read side.
		r.With(authMiddleware.OptionalAuth()).Get("/leaderboard", controller.Leaderboard)
		r.Get("/user-rank/{userID}", controller.UserRank)
		r.Get("/stats", controller.PlatformStats)

		// Authenticated write side.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth())
			r.Post("/track-activity", controller.TrackActivity)
			r.Post("/daily-login", controller.DailyLogin)
			r.Get("/my-points", controller.MyPoints)
		})

		// Admin operations.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth())
			r.Use(authMiddleware.RequireRole("admin"))
			r.Post("/activities/{activityID}/verify", controller.VerifyActivity)
			r.Post("/admin/initialize-user", controller.InitializeUser)
			r.Post("/admin/recompute-ranks", controller.RecomputeRanks)
		})
	})

	return r
}

// healthHandler reports database and cache health.
func healthHandler(db *database.Manager, c cache.Cache, rb *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dbHealth := db.Health(ctx)
		cacheStatus := "healthy"
		if err := c.Health(ctx); err != nil {
			cacheStatus = "unhealthy"
		}

		payload := map[string]interface{}{
			"status":   dbHealth.Status,
			"database": dbHealth,
			"cache":    cacheStatus,
		}

		if dbHealth.Status == database.StatusUnhealthy {
			rb.WriteServiceUnavailable(w, r, payload)
			return
		}
		rb.WriteSuccess(w, r, payload)
	}
}
