package services

import (
	"context"

	"opphub/internal/models"
)

// PointsService is the write-side engine: activity tracking, daily logins,
// verification, and summary reads.
type PointsService interface {
	TrackActivity(ctx context.Context, req *TrackActivityRequest) (*AwardResult, error)
	RecordDailyLogin(ctx context.Context, userID int64) (*DailyLoginResult, error)
	GetMyPoints(ctx context.Context, userID int64) (*MyPointsResponse, error)
	GetSummary(ctx context.Context, userID int64) (*models.PointsSummary, error)
	VerifyActivity(ctx context.Context, req *VerifyActivityRequest) (*VerifyActivityResult, error)
	InitializeUser(ctx context.Context, req *InitializeUserRequest) (*InitializeUserResult, error)
}

// LeaderboardService serves the ranked read side, cached where it helps.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error)
	GetUserRank(ctx context.Context, userID int64) (*UserRankResponse, error)
	GetPlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// RankScheduler accepts fire-and-forget rank recomputation requests.
type RankScheduler interface {
	Enqueue(userID int64)
	RecomputeAll(ctx context.Context) (int64, error)
}
