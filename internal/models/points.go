// file: internal/models/points.go
package models

import (
	"time"

	"opphub/internal/points"
)

// ===============================
// CORE ENTITIES
// ===============================

// Activity status values. Records are append-only; status is the only field
// that may change after creation, and it transitions at most once.
const (
	ActivityStatusPending  = "pending"
	ActivityStatusVerified = "verified"
	ActivityStatusRejected = "rejected"
)

// ActivityRecord is one point-earning event. It is the audit trail for every
// increment applied to a PointsSummary.
type ActivityRecord struct {
	ID                int64                  `json:"id" db:"id"`
	UserID            int64                  `json:"user_id" db:"user_id"`
	ActivityType      points.ActivityType    `json:"activity_type" db:"activity_type"`
	PointsAwarded     int                    `json:"points_awarded" db:"points_awarded"`
	Metadata          map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	RelatedEntityID   *int64                 `json:"related_entity_id,omitempty" db:"related_entity_id"`
	RelatedEntityType *string                `json:"related_entity_type,omitempty" db:"related_entity_type"`
	Status            string                 `json:"status" db:"status"`
	VerifiedBy        *int64                 `json:"verified_by,omitempty" db:"verified_by"`
	VerifiedAt        *time.Time             `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt         time.Time              `json:"created_at" db:"created_at"`
}

// PointsBreakdown splits a user's total across the fixed category set.
type PointsBreakdown struct {
	Hackathons  int `json:"hackathons" db:"breakdown_hackathons"`
	Internships int `json:"internships" db:"breakdown_internships"`
	Events      int `json:"events" db:"breakdown_events"`
	Profile     int `json:"profile" db:"breakdown_profile"`
	Social      int `json:"social" db:"breakdown_social"`
	Engagement  int `json:"engagement" db:"breakdown_engagement"`
	Projects    int `json:"projects" db:"breakdown_projects"`
}

// Sum returns the total of all category buckets. The aggregator keeps this
// equal to TotalPoints at all times.
func (b PointsBreakdown) Sum() int {
	return b.Hackathons + b.Internships + b.Events + b.Profile +
		b.Social + b.Engagement + b.Projects
}

// ForCategory returns the bucket value for a breakdown category.
func (b PointsBreakdown) ForCategory(c points.Category) int {
	switch c {
	case points.CategoryHackathons:
		return b.Hackathons
	case points.CategoryInternships:
		return b.Internships
	case points.CategoryEvents:
		return b.Events
	case points.CategoryProfile:
		return b.Profile
	case points.CategorySocial:
		return b.Social
	case points.CategoryEngagement:
		return b.Engagement
	case points.CategoryProjects:
		return b.Projects
	}
	return 0
}

// ActivityStats holds the monotonically increasing counters badge predicates
// are evaluated against.
type ActivityStats struct {
	HackathonsParticipated int `json:"hackathons_participated" db:"hackathons_participated"`
	HackathonsWon          int `json:"hackathons_won" db:"hackathons_won"`
	InternshipsCompleted   int `json:"internships_completed" db:"internships_completed"`
	EventsAttended         int `json:"events_attended" db:"events_attended"`
	ProjectsSubmitted      int `json:"projects_submitted" db:"projects_submitted"`
	BadgesEarned           int `json:"badges_earned" db:"badges_earned"`
	ProfileCompletion      int `json:"profile_completion" db:"profile_completion"`
}

// EarnedBadge is a badge snapshot stored on a user's summary. Names are unique
// per user; list order is earn order.
type EarnedBadge struct {
	Name          string    `json:"name" db:"name"`
	Icon          string    `json:"icon" db:"icon"`
	Description   string    `json:"description" db:"description"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
}

// PointsSummary is the single aggregate row per user: totals, breakdown,
// counters, streaks, rank tracking, earned badges, and the denormalized
// reputation tier snapshot.
type PointsSummary struct {
	UserID      int64           `json:"user_id" db:"user_id"`
	TotalPoints int             `json:"total_points" db:"total_points"`
	Breakdown   PointsBreakdown `json:"points_breakdown"`
	Stats       ActivityStats   `json:"activity_stats"`

	CurrentRank  *int `json:"current_rank,omitempty" db:"current_rank"`
	PreviousRank *int `json:"previous_rank,omitempty" db:"previous_rank"`
	RankChange   int  `json:"rank_change" db:"rank_change"`

	CurrentStreak    int       `json:"current_streak" db:"current_streak"`
	LongestStreak    int       `json:"longest_streak" db:"longest_streak"`
	LastActivityDate time.Time `json:"last_activity_date" db:"last_activity_date"`

	Badges         []EarnedBadge `json:"badges"`
	ReputationTier points.Tier   `json:"reputation_tier"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// BadgeStats projects the summary into the snapshot badge predicates inspect.
func (s *PointsSummary) BadgeStats() points.BadgeStats {
	return points.BadgeStats{
		CurrentStreak:          s.CurrentStreak,
		HackathonsParticipated: s.Stats.HackathonsParticipated,
		HackathonsWon:          s.Stats.HackathonsWon,
		InternshipsCompleted:   s.Stats.InternshipsCompleted,
		EventsAttended:         s.Stats.EventsAttended,
		ProjectsSubmitted:      s.Stats.ProjectsSubmitted,
		ProfileCompletion:      s.Stats.ProfileCompletion,
	}
}

// EarnedBadgeNames lists badge names in earn order.
func (s *PointsSummary) EarnedBadgeNames() []string {
	names := make([]string, 0, len(s.Badges))
	for _, b := range s.Badges {
		names = append(names, b.Name)
	}
	return names
}

// ===============================
// READ-SIDE SHAPES
// ===============================

// LeaderboardEntry is one ranked row in a leaderboard view.
type LeaderboardEntry struct {
	Rank           int             `json:"rank"`
	UserID         int64           `json:"user_id"`
	Points         int             `json:"points"`
	TotalPoints    int             `json:"total_points"`
	ReputationTier points.Tier     `json:"reputation_tier"`
	Badges         []EarnedBadge   `json:"badges"`
	Stats          ActivityStats   `json:"activity_stats"`
	Breakdown      PointsBreakdown `json:"points_breakdown"`
	RankChange     int             `json:"rank_change"`
	CurrentStreak  int             `json:"current_streak"`
}

// TierCount is one bucket of the platform tier distribution.
type TierCount struct {
	Tier  string `json:"tier"`
	Count int64  `json:"count"`
}

// PlatformStats aggregates activity across all summaries.
type PlatformStats struct {
	TotalUsers       int64       `json:"total_users"`
	TotalPoints      int64       `json:"total_points"`
	AvgPoints        float64     `json:"avg_points"`
	TotalHackathons  int64       `json:"total_hackathons"`
	TotalInternships int64       `json:"total_internships"`
	TotalEvents      int64       `json:"total_events"`
	TotalProjects    int64       `json:"total_projects"`
	TierDistribution []TierCount `json:"tier_distribution"`
}
