package repositories

import (
	"context"
	"time"

	"opphub/internal/models"
	"opphub/internal/points"
)

// AwardMutation is the unit of work applied by SummaryRepository.ApplyAward:
// one activity record plus the matching summary increments, committed together.
type AwardMutation struct {
	UserID            int64
	Definition        points.Definition
	Points            int // points to award; usually Definition.Points
	Metadata          map[string]interface{}
	RelatedEntityID   *int64
	RelatedEntityType *string
	Status            string
}

// AwardOutcome reports what an award transaction changed.
type AwardOutcome struct {
	Activity  *models.ActivityRecord
	Summary   *models.PointsSummary
	NewBadges []models.EarnedBadge
}

// DailyLoginOutcome reports the result of a daily-login attempt.
type DailyLoginOutcome struct {
	AlreadyLoggedToday bool
	PointsAwarded      int
	Streak             int
	LongestStreak      int
	StreakBonus        int
	NewBadges          []models.EarnedBadge
	Summary            *models.PointsSummary
}

// LeaderboardQuery filters a ranked summary listing.
type LeaderboardQuery struct {
	Category string // "all" or a breakdown category
	Limit    int
	Since    *time.Time // nil for all-time
}

// InitialStats seeds a summary for a user with pre-existing history.
type InitialStats struct {
	HackathonsParticipated int
	HackathonsWon          int
	InternshipsCompleted   int
	EventsAttended         int
	ProfileComplete        bool
}

// ActivityRepository reads the append-only activity audit trail. Writes go
// through SummaryRepository so the record and the increment share a
// transaction.
type ActivityRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ActivityRecord, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*models.ActivityRecord, error)
	// GetRecentMatch finds a prior record for the same one-shot action inside
	// the duplicate-suppression window. Returns nil when there is none.
	GetRecentMatch(ctx context.Context, userID int64, activityType points.ActivityType, relatedEntityID *int64, since time.Time) (*models.ActivityRecord, error)
	// SetStatus performs the single pending -> verified/rejected transition.
	// Returns false when the record was not pending.
	SetStatus(ctx context.Context, id int64, status string, reviewerID int64) (bool, error)
}

// SummaryRepository owns the per-user points summary rows and every
// mutation applied to them.
type SummaryRepository interface {
	GetByUser(ctx context.Context, userID int64) (*models.PointsSummary, error)
	// EnsureDefault creates a zeroed summary if absent and returns the row.
	EnsureDefault(ctx context.Context, userID int64) (*models.PointsSummary, error)
	// InitializeUser backfills a summary from pre-existing stats. No-op when a
	// summary already exists; the second return reports whether a row was
	// created.
	InitializeUser(ctx context.Context, userID int64, seed InitialStats) (*models.PointsSummary, bool, error)

	ApplyAward(ctx context.Context, m *AwardMutation) (*AwardOutcome, error)
	ApplyDailyLogin(ctx context.Context, userID int64, now time.Time) (*DailyLoginOutcome, error)

	Rank(ctx context.Context, userID int64) (int, error)
	RecomputeRank(ctx context.Context, userID int64) error
	RecomputeAllRanks(ctx context.Context) (int64, error)
	Nearby(ctx context.Context, userID int64, pointsWindow, limit int) ([]*models.LeaderboardEntry, error)

	Leaderboard(ctx context.Context, q LeaderboardQuery) ([]*models.LeaderboardEntry, error)
	CountActive(ctx context.Context, since *time.Time) (int64, error)
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	BadgesFor(ctx context.Context, userID int64) ([]models.EarnedBadge, error)
}
