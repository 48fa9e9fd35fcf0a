// file: internal/services/fakes_test.go
package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"opphub/internal/config"
	"opphub/internal/models"
	"opphub/internal/points"
	"opphub/internal/repositories"
)

// fakeStore is an in-memory stand-in for both repositories. It reproduces the
// aggregation rules the SQL layer enforces (breakdown buckets, stat counters,
// badge sweep, tier snapshot) so service tests exercise real arithmetic.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int64
	activities []*models.ActivityRecord
	summaries  map[int64]*models.PointsSummary

	awardErr         error
	loginErr         error
	leaderboardCalls int
	statsCalls       int

	// optional notifications for worker tests
	rankNotify    chan int64
	allRankNotify chan int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{summaries: make(map[int64]*models.PointsSummary)}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ensureLocked(userID int64) *models.PointsSummary {
	if s, ok := f.summaries[userID]; ok {
		return s
	}
	now := time.Now()
	s := &models.PointsSummary{
		UserID:           userID,
		Badges:           []models.EarnedBadge{},
		ReputationTier:   points.LowestTier(),
		LastActivityDate: time.Unix(0, 0),
		LastUpdated:      now,
		CreatedAt:        now,
	}
	f.summaries[userID] = s
	return s
}

func (f *fakeStore) applyPointsLocked(s *models.PointsSummary, pts int, c points.Category) {
	s.TotalPoints += pts
	switch c {
	case points.CategoryHackathons:
		s.Breakdown.Hackathons += pts
	case points.CategoryInternships:
		s.Breakdown.Internships += pts
	case points.CategoryEvents:
		s.Breakdown.Events += pts
	case points.CategoryProfile:
		s.Breakdown.Profile += pts
	case points.CategorySocial:
		s.Breakdown.Social += pts
	case points.CategoryEngagement:
		s.Breakdown.Engagement += pts
	case points.CategoryProjects:
		s.Breakdown.Projects += pts
	}
}

func (f *fakeStore) bumpStatLocked(s *models.PointsSummary, counter points.StatCounter) {
	switch counter {
	case points.StatHackathonsParticipated:
		s.Stats.HackathonsParticipated++
	case points.StatHackathonsWon:
		s.Stats.HackathonsWon++
	case points.StatInternshipsCompleted:
		s.Stats.InternshipsCompleted++
	case points.StatEventsAttended:
		s.Stats.EventsAttended++
	case points.StatProjectsSubmitted:
		s.Stats.ProjectsSubmitted++
	}
}

// badgeSweepLocked mirrors the persistence layer: badge bonuses land in the
// engagement bucket so the total always equals the breakdown sum.
func (f *fakeStore) badgeSweepLocked(s *models.PointsSummary, now time.Time) []models.EarnedBadge {
	unlocked := points.EvaluateBadges(s.BadgeStats(), s.EarnedBadgeNames())
	earned := make([]models.EarnedBadge, 0, len(unlocked))
	for _, b := range unlocked {
		badge := models.EarnedBadge{
			Name:          b.Name,
			Icon:          b.Icon,
			Description:   b.Description,
			PointsAwarded: b.Points,
			EarnedAt:      now,
		}
		s.Badges = append(s.Badges, badge)
		s.TotalPoints += b.Points
		s.Breakdown.Engagement += b.Points
		s.Stats.BadgesEarned++
		earned = append(earned, badge)
	}
	return earned
}

func (f *fakeStore) rankLocked(userID int64) int {
	mine := 0
	if s, ok := f.summaries[userID]; ok {
		mine = s.TotalPoints
	}
	rank := 1
	for id, s := range f.summaries {
		if id != userID && s.TotalPoints > mine {
			rank++
		}
	}
	return rank
}

// ===============================
// ActivityRepository
// ===============================

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListRecent(ctx context.Context, userID int64, limit int) ([]*models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ActivityRecord
	for i := len(f.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if f.activities[i].UserID == userID {
			out = append(out, f.activities[i])
		}
	}
	return out, nil
}

func (f *fakeStore) GetRecentMatch(ctx context.Context, userID int64, activityType points.ActivityType, relatedEntityID *int64, since time.Time) (*models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.activities) - 1; i >= 0; i-- {
		a := f.activities[i]
		if a.UserID != userID || a.ActivityType != activityType || a.CreatedAt.Before(since) {
			continue
		}
		if relatedEntityID == nil {
			if a.RelatedEntityID == nil {
				return a, nil
			}
			continue
		}
		if a.RelatedEntityID != nil && *a.RelatedEntityID == *relatedEntityID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id int64, status string, reviewerID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.activities {
		if a.ID != id {
			continue
		}
		if a.Status != models.ActivityStatusPending {
			return false, nil
		}
		now := time.Now()
		a.Status = status
		a.VerifiedBy = &reviewerID
		a.VerifiedAt = &now
		return true, nil
	}
	return false, nil
}

// ===============================
// SummaryRepository
// ===============================

func (f *fakeStore) GetByUser(ctx context.Context, userID int64) (*models.PointsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[userID], nil
}

func (f *fakeStore) EnsureDefault(ctx context.Context, userID int64) (*models.PointsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ensureLocked(userID), nil
}

func (f *fakeStore) InitializeUser(ctx context.Context, userID int64, seed repositories.InitialStats) (*models.PointsSummary, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summaries[userID]; ok {
		return s, false, nil
	}
	s := f.ensureLocked(userID)
	now := time.Now()

	participatedDef, _ := points.Lookup(points.HackathonParticipated)
	wonDef, _ := points.Lookup(points.HackathonWon)
	completedDef, _ := points.Lookup(points.InternshipCompleted)
	attendedDef, _ := points.Lookup(points.EventAttended)

	f.applyPointsLocked(s, seed.HackathonsParticipated*participatedDef.Points, points.CategoryHackathons)
	f.applyPointsLocked(s, seed.HackathonsWon*wonDef.Points, points.CategoryHackathons)
	f.applyPointsLocked(s, seed.InternshipsCompleted*completedDef.Points, points.CategoryInternships)
	f.applyPointsLocked(s, seed.EventsAttended*attendedDef.Points, points.CategoryEvents)
	s.Stats.HackathonsParticipated = seed.HackathonsParticipated
	s.Stats.HackathonsWon = seed.HackathonsWon
	s.Stats.InternshipsCompleted = seed.InternshipsCompleted
	s.Stats.EventsAttended = seed.EventsAttended
	if seed.ProfileComplete {
		profileDef, _ := points.Lookup(points.ProfileCompleted)
		f.applyPointsLocked(s, profileDef.Points, points.CategoryProfile)
		s.Stats.ProfileCompletion = 100
	}

	// Backfill seeds raw totals only; no badge sweep, matching the SQL layer.
	s.ReputationTier = points.TierFor(s.TotalPoints)
	s.LastUpdated = now
	return s, true, nil
}

func (f *fakeStore) ApplyAward(ctx context.Context, m *repositories.AwardMutation) (*repositories.AwardOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awardErr != nil {
		return nil, f.awardErr
	}
	now := time.Now()

	status := m.Status
	if status == "" {
		status = models.ActivityStatusVerified
	}
	rec := &models.ActivityRecord{
		ID:                f.id(),
		UserID:            m.UserID,
		ActivityType:      m.Definition.Type,
		PointsAwarded:     m.Points,
		Metadata:          m.Metadata,
		RelatedEntityID:   m.RelatedEntityID,
		RelatedEntityType: m.RelatedEntityType,
		Status:            status,
		CreatedAt:         now,
	}
	f.activities = append(f.activities, rec)

	s := f.ensureLocked(m.UserID)
	f.applyPointsLocked(s, m.Points, m.Definition.Category)
	f.bumpStatLocked(s, m.Definition.Stat)
	if m.Definition.Type == points.ProfileCompleted && s.Stats.ProfileCompletion < 100 {
		s.Stats.ProfileCompletion = 100
	}

	newBadges := f.badgeSweepLocked(s, now)
	s.ReputationTier = points.TierFor(s.TotalPoints)
	s.LastUpdated = now

	return &repositories.AwardOutcome{Activity: rec, Summary: s, NewBadges: newBadges}, nil
}

func (f *fakeStore) ApplyDailyLogin(ctx context.Context, userID int64, now time.Time) (*repositories.DailyLoginOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}

	s := f.ensureLocked(userID)
	if points.SameCalendarDay(s.LastActivityDate, now) {
		return &repositories.DailyLoginOutcome{
			AlreadyLoggedToday: true,
			Streak:             s.CurrentStreak,
			LongestStreak:      s.LongestStreak,
			NewBadges:          []models.EarnedBadge{},
			Summary:            s,
		}, nil
	}

	streak, _ := points.NextStreak(s.LastActivityDate, now, s.CurrentStreak)
	bonus := points.StreakBonus(streak)
	loginDef, _ := points.Lookup(points.DailyLogin)
	award := loginDef.Points + bonus

	rec := &models.ActivityRecord{
		ID:            f.id(),
		UserID:        userID,
		ActivityType:  points.DailyLogin,
		PointsAwarded: award,
		Metadata:      map[string]interface{}{"streak": streak, "streak_bonus": bonus},
		Status:        models.ActivityStatusVerified,
		CreatedAt:     now,
	}
	f.activities = append(f.activities, rec)

	s.CurrentStreak = streak
	if streak > s.LongestStreak {
		s.LongestStreak = streak
	}
	s.LastActivityDate = now
	f.applyPointsLocked(s, award, points.CategoryEngagement)

	newBadges := f.badgeSweepLocked(s, now)
	s.ReputationTier = points.TierFor(s.TotalPoints)
	s.LastUpdated = now

	return &repositories.DailyLoginOutcome{
		PointsAwarded: award,
		Streak:        streak,
		LongestStreak: s.LongestStreak,
		StreakBonus:   bonus,
		NewBadges:     newBadges,
		Summary:       s,
	}, nil
}

func (f *fakeStore) Rank(ctx context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rankLocked(userID), nil
}

func (f *fakeStore) RecomputeRank(ctx context.Context, userID int64) error {
	f.mu.Lock()
	s := f.ensureLocked(userID)
	rank := f.rankLocked(userID)
	prev := s.CurrentRank
	if prev == nil {
		prev = &rank
	}
	s.PreviousRank = prev
	s.CurrentRank = &rank
	s.RankChange = *prev - rank
	f.mu.Unlock()

	if f.rankNotify != nil {
		select {
		case f.rankNotify <- userID:
		default:
		}
	}
	return nil
}

func (f *fakeStore) RecomputeAllRanks(ctx context.Context) (int64, error) {
	f.mu.Lock()
	ids := make([]int64, 0, len(f.summaries))
	for id := range f.summaries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return f.summaries[ids[i]].TotalPoints > f.summaries[ids[j]].TotalPoints
	})
	for _, id := range ids {
		s := f.summaries[id]
		rank := f.rankLocked(id)
		prev := s.CurrentRank
		if prev == nil {
			prev = &rank
		}
		s.PreviousRank = prev
		s.CurrentRank = &rank
		s.RankChange = *prev - rank
	}
	n := int64(len(ids))
	f.mu.Unlock()

	if f.allRankNotify != nil {
		select {
		case f.allRankNotify <- n:
		default:
		}
	}
	return n, nil
}

func (f *fakeStore) Nearby(ctx context.Context, userID int64, pointsWindow, limit int) ([]*models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mine := 0
	if s, ok := f.summaries[userID]; ok {
		mine = s.TotalPoints
	}
	var out []*models.LeaderboardEntry
	for id, s := range f.summaries {
		diff := s.TotalPoints - mine
		if diff < 0 {
			diff = -diff
		}
		if diff > pointsWindow {
			continue
		}
		out = append(out, f.entryLocked(id, s, s.TotalPoints))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	for _, e := range out {
		e.Rank = f.rankLocked(e.UserID)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) Leaderboard(ctx context.Context, q repositories.LeaderboardQuery) ([]*models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboardCalls++

	var out []*models.LeaderboardEntry
	for id, s := range f.summaries {
		if s.TotalPoints <= 0 {
			continue
		}
		if q.Since != nil && s.LastActivityDate.Before(*q.Since) {
			continue
		}
		pts := s.TotalPoints
		if q.Category != "all" {
			pts = s.Breakdown.ForCategory(points.Category(q.Category))
		}
		out = append(out, f.entryLocked(id, s, pts))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	for i, e := range out {
		e.Rank = i + 1
	}
	return out, nil
}

func (f *fakeStore) entryLocked(id int64, s *models.PointsSummary, pts int) *models.LeaderboardEntry {
	return &models.LeaderboardEntry{
		UserID:         id,
		Points:         pts,
		TotalPoints:    s.TotalPoints,
		ReputationTier: s.ReputationTier,
		Badges:         s.Badges,
		Stats:          s.Stats,
		Breakdown:      s.Breakdown,
		RankChange:     s.RankChange,
		CurrentStreak:  s.CurrentStreak,
	}
}

func (f *fakeStore) CountActive(ctx context.Context, since *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.summaries {
		if s.TotalPoints <= 0 {
			continue
		}
		if since != nil && s.LastActivityDate.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeStore) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++

	stats := &models.PlatformStats{}
	tierCounts := make(map[string]int64)
	for _, s := range f.summaries {
		stats.TotalUsers++
		stats.TotalPoints += int64(s.TotalPoints)
		stats.TotalHackathons += int64(s.Stats.HackathonsParticipated)
		stats.TotalInternships += int64(s.Stats.InternshipsCompleted)
		stats.TotalEvents += int64(s.Stats.EventsAttended)
		stats.TotalProjects += int64(s.Stats.ProjectsSubmitted)
		tierCounts[s.ReputationTier.Name]++
	}
	if stats.TotalUsers > 0 {
		stats.AvgPoints = float64(stats.TotalPoints) / float64(stats.TotalUsers)
	}
	for _, tier := range points.Tiers {
		if c, ok := tierCounts[tier.Name]; ok {
			stats.TierDistribution = append(stats.TierDistribution, models.TierCount{Tier: tier.Name, Count: c})
		}
	}
	return stats, nil
}

func (f *fakeStore) BadgesFor(ctx context.Context, userID int64) ([]models.EarnedBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summaries[userID]; ok {
		return s.Badges, nil
	}
	return nil, nil
}

// fakeScheduler records enqueue requests instead of recomputing anything.
type fakeScheduler struct {
	mu       sync.Mutex
	enqueued []int64
}

func (s *fakeScheduler) Enqueue(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, userID)
}

func (s *fakeScheduler) RecomputeAll(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *fakeScheduler) calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.enqueued...)
}

func pointsLookup(activityType string) (points.Definition, bool) {
	return points.Lookup(points.ActivityType(activityType))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Provider:       "memory",
			KeyPrefix:      "test:",
			LeaderboardTTL: 30 * time.Second,
			StatsTTL:       5 * time.Minute,
		},
		Points: config.PointsConfig{
			DedupWindow:       24 * time.Hour,
			AwardTimeout:      5 * time.Second,
			RankQueueSize:     8,
			RecomputeInterval: time.Hour,
		},
	}
}
