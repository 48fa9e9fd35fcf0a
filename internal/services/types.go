package services

import (
	"time"

	"opphub/internal/models"
	"opphub/internal/points"
)

// ===============================
// REQUEST TYPES
// ===============================

// TrackActivityRequest reports one point-earning event for a user.
type TrackActivityRequest struct {
	UserID            int64                  `json:"-"`
	ActivityType      string                 `json:"activity_type" validate:"required"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	RelatedEntityID   *int64                 `json:"related_entity_id,omitempty"`
	RelatedEntityType *string                `json:"related_entity_type,omitempty" validate:"omitempty,max=64"`
	// Pending marks the record for later review. Points are still awarded
	// immediately; verification only annotates the audit record.
	Pending bool `json:"pending,omitempty"`
}

// LeaderboardRequest filters the ranked listing.
type LeaderboardRequest struct {
	Category  string `json:"category" validate:"omitempty,max=32"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Timeframe string `json:"timeframe" validate:"omitempty,oneof=all-time monthly weekly"`
}

// VerifyActivityRequest resolves a pending activity record.
type VerifyActivityRequest struct {
	ActivityID int64 `json:"-"`
	ReviewerID int64 `json:"-"`
	Approve    bool  `json:"approve"`
}

// InitializeUserRequest backfills a summary from pre-existing history.
type InitializeUserRequest struct {
	UserID                 int64 `json:"user_id" validate:"required,min=1"`
	HackathonsParticipated int   `json:"hackathons_participated" validate:"min=0"`
	HackathonsWon          int   `json:"hackathons_won" validate:"min=0"`
	InternshipsCompleted   int   `json:"internships_completed" validate:"min=0"`
	EventsAttended         int   `json:"events_attended" validate:"min=0"`
	ProfileComplete        bool  `json:"profile_complete"`
}

// ===============================
// RESPONSE TYPES
// ===============================

// AwardResult is the caller-facing outcome of tracking an activity. When
// AlreadyTracked is set the award was suppressed by the duplicate window and
// nothing changed; this is a success, not an error.
type AwardResult struct {
	Activity       *models.ActivityRecord `json:"activity,omitempty"`
	PointsAwarded  int                    `json:"points_awarded"`
	TotalPoints    int                    `json:"total_points"`
	ReputationTier points.Tier            `json:"reputation_tier"`
	NewBadges      []models.EarnedBadge   `json:"new_badges"`
	RankChange     int                    `json:"rank_change"`
	AlreadyTracked bool                   `json:"already_tracked"`
}

// DailyLoginResult reports the streak state after a login.
type DailyLoginResult struct {
	PointsAwarded      int                  `json:"points_awarded"`
	Streak             int                  `json:"streak"`
	LongestStreak      int                  `json:"longest_streak"`
	StreakBonus        int                  `json:"streak_bonus"`
	AlreadyLoggedToday bool                 `json:"already_logged_today"`
	NewBadges          []models.EarnedBadge `json:"new_badges"`
	TotalPoints        int                  `json:"total_points"`
}

// MyPointsResponse combines a summary with the recent activity feed.
type MyPointsResponse struct {
	Summary          *models.PointsSummary    `json:"summary"`
	RecentActivities []*models.ActivityRecord `json:"recent_activities"`
}

// LeaderboardResponse is one page of ranked users.
type LeaderboardResponse struct {
	Entries    []*models.LeaderboardEntry `json:"leaderboard"`
	Category   string                     `json:"category"`
	Timeframe  string                     `json:"timeframe"`
	TotalUsers int64                      `json:"total_users"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// UserRankResponse is a user's position with the surrounding field.
type UserRankResponse struct {
	Summary     *models.PointsSummary      `json:"summary"`
	Rank        int                        `json:"rank"`
	NearbyUsers []*models.LeaderboardEntry `json:"nearby_users"`
}

// VerifyActivityResult reports the transition applied to a record.
type VerifyActivityResult struct {
	Activity *models.ActivityRecord `json:"activity"`
	Status   string                 `json:"status"`
}

// InitializeUserResult reports a backfill outcome.
type InitializeUserResult struct {
	Summary *models.PointsSummary `json:"summary"`
	Created bool                  `json:"created"`
}
