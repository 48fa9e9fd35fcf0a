package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"opphub/internal/cache"
	"opphub/internal/config"
	"opphub/internal/models"
	"opphub/internal/points"
	"opphub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
	nearbyPointsWindow      = 100
	nearbyLimit             = 11
)

// leaderboardService implements LeaderboardService. Leaderboard and stats
// pages are cached; per-user rank lookups are not.
type leaderboardService struct {
	summaries repositories.SummaryRepository
	cache     cache.Cache
	cfg       *config.Config
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewLeaderboardService creates the read-side service.
func NewLeaderboardService(
	summaries repositories.SummaryRepository,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) LeaderboardService {
	return &leaderboardService{
		summaries: summaries,
		cache:     c,
		cfg:       cfg,
		validate:  validator.New(),
		logger:    logger,
	}
}

// GetLeaderboard returns one ranked page, filtered by category and timeframe.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid leaderboard request", err)
	}

	category := req.Category
	if category == "" {
		category = "all"
	}
	if category != "all" && !points.IsCategory(category) {
		return nil, NewValidationError(fmt.Sprintf("unknown leaderboard category: %s", category), nil)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "all-time"
	}
	since := timeframeStart(timeframe, time.Now())

	cacheKey := fmt.Sprintf("%sleaderboard:%s:%s:%d", s.cfg.Cache.KeyPrefix, category, timeframe, limit)
	if raw, ok := s.cache.Get(ctx, cacheKey); ok {
		var cached LeaderboardResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn("Discarding undecodable leaderboard cache entry", zap.String("key", cacheKey))
	}

	entries, err := s.summaries.Leaderboard(ctx, repositories.LeaderboardQuery{
		Category: category,
		Limit:    limit,
		Since:    since,
	})
	if err != nil {
		return nil, NewInternalError("failed to load leaderboard")
	}
	if entries == nil {
		entries = []*models.LeaderboardEntry{}
	}

	// The user count covers everyone with points, even when the page itself is
	// timeframe-filtered.
	totalUsers, err := s.summaries.CountActive(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to count leaderboard users")
	}

	resp := &LeaderboardResponse{
		Entries:    entries,
		Category:   category,
		Timeframe:  timeframe,
		TotalUsers: totalUsers,
		UpdatedAt:  time.Now(),
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, raw, s.cfg.Cache.LeaderboardTTL); err != nil {
			s.logger.Warn("Failed to cache leaderboard page", zap.Error(err))
		}
	}

	return resp, nil
}

// GetUserRank returns a user's live rank with the nearby field. The summary is
// created on first read so this never errors for unknown users.
func (s *leaderboardService) GetUserRank(ctx context.Context, userID int64) (*UserRankResponse, error) {
	summary, err := s.summaries.EnsureDefault(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load points summary")
	}

	rank, err := s.summaries.Rank(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to compute rank")
	}

	nearby, err := s.summaries.Nearby(ctx, userID, nearbyPointsWindow, nearbyLimit)
	if err != nil {
		return nil, NewInternalError("failed to load nearby users")
	}
	if nearby == nil {
		nearby = []*models.LeaderboardEntry{}
	}

	return &UserRankResponse{
		Summary:     summary,
		Rank:        rank,
		NearbyUsers: nearby,
	}, nil
}

// GetPlatformStats returns platform-wide aggregates, cached.
func (s *leaderboardService) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	cacheKey := s.cfg.Cache.KeyPrefix + "platform-stats"
	if raw, ok := s.cache.Get(ctx, cacheKey); ok {
		var cached models.PlatformStats
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.summaries.PlatformStats(ctx)
	if err != nil {
		return nil, NewInternalError("failed to aggregate platform stats")
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cacheKey, raw, s.cfg.Cache.StatsTTL); err != nil {
			s.logger.Warn("Failed to cache platform stats", zap.Error(err))
		}
	}

	return stats, nil
}

// timeframeStart maps a timeframe name to its lower bound on last activity.
// Monthly and weekly are trailing windows of thirty and seven days, not
// calendar boundaries. Nil means all-time.
func timeframeStart(timeframe string, now time.Time) *time.Time {
	switch timeframe {
	case "monthly":
		start := now.AddDate(0, 0, -30)
		return &start
	case "weekly":
		start := now.AddDate(0, 0, -7)
		return &start
	default:
		return nil
	}
}
