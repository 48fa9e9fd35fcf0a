package points

import (
	"encoding/json"
	"net/http"
	"strconv"

	"opphub/internal/middleware"
	"opphub/internal/response"
	"opphub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PointsController handles the points, streak, and leaderboard endpoints.
type PointsController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewPointsController creates the points API controller.
func NewPointsController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *PointsController {
	return &PointsController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// TrackActivity handles POST /api/v1/points/track-activity
func (c *PointsController) TrackActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	var req services.TrackActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	result, err := c.services.Points.TrackActivity(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if result.AlreadyTracked {
		c.responseBuilder.WriteSuccess(w, r, result)
		return
	}
	c.responseBuilder.WriteCreated(w, r, result)
}

// DailyLogin handles POST /api/v1/points/daily-login
func (c *PointsController) DailyLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := c.services.Points.RecordDailyLogin(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// MyPoints handles GET /api/v1/points/my-points
func (c *PointsController) MyPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := c.services.Points.GetMyPoints(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// Leaderboard handles GET /api/v1/points/leaderboard
func (c *PointsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	req := services.LeaderboardRequest{
		Category:  r.URL.Query().Get("category"),
		Timeframe: r.URL.Query().Get("timeframe"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("limit must be an integer", err))
			return
		}
		req.Limit = limit
	}

	result, err := c.services.Leaderboard.GetLeaderboard(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// UserRank handles GET /api/v1/points/user-rank/{userID}
func (c *PointsController) UserRank(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	result, err := c.services.Leaderboard.GetUserRank(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// PlatformStats handles GET /api/v1/points/stats
func (c *PointsController) PlatformStats(w http.ResponseWriter, r *http.Request) {
	result, err := c.services.Leaderboard.GetPlatformStats(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// VerifyActivity handles POST /api/v1/points/activities/{activityID}/verify
func (c *PointsController) VerifyActivity(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	activityID, err := strconv.ParseInt(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil || activityID <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid activity id", err))
		return
	}

	var req services.VerifyActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ActivityID = activityID
	req.ReviewerID = reviewerID

	result, err := c.services.Points.VerifyActivity(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// InitializeUser handles POST /api/v1/points/admin/initialize-user
func (c *PointsController) InitializeUser(w http.ResponseWriter, r *http.Request) {
	var req services.InitializeUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.services.Points.InitializeUser(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if result.Created {
		c.responseBuilder.WriteCreated(w, r, result)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// RecomputeRanks handles POST /api/v1/points/admin/recompute-ranks
func (c *PointsController) RecomputeRanks(w http.ResponseWriter, r *http.Request) {
	updated, err := c.services.Ranks.RecomputeAll(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewInternalError("failed to recompute ranks"))
		return
	}

	c.logger.Info("Admin-triggered rank recompute", zap.Int64("rows_updated", updated))
	c.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"rows_updated": updated,
	})
}
