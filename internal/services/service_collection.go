package services

import (
	"opphub/internal/cache"
	"opphub/internal/config"
	"opphub/internal/database"
	"opphub/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection wires the repositories, cache, and worker into the
// services the HTTP layer consumes.
type ServiceCollection struct {
	Points      PointsService
	Leaderboard LeaderboardService
	Ranks       *RankWorker
}

// NewServiceCollection builds the full service graph.
func NewServiceCollection(
	db *database.Manager,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceCollection {
	activityRepo := repositories.NewActivityRepository(db, logger.Named("activities"))
	summaryRepo := repositories.NewSummaryRepository(db, logger.Named("summaries"))

	ranks := NewRankWorker(summaryRepo, &cfg.Points, logger.Named("ranks"))

	return &ServiceCollection{
		Points:      NewPointsService(activityRepo, summaryRepo, ranks, c, cfg, logger.Named("points")),
		Leaderboard: NewLeaderboardService(summaryRepo, c, cfg, logger.Named("leaderboard")),
		Ranks:       ranks,
	}
}
