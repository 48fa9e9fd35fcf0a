// file: internal/services/points_service_test.go
package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"opphub/internal/cache"
	"opphub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPointsHarness(t *testing.T) (PointsService, *fakeStore, *fakeScheduler, cache.Cache) {
	t.Helper()
	store := newFakeStore()
	scheduler := &fakeScheduler{}
	c := cache.NewMemoryCache(zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	svc := NewPointsService(store, store, scheduler, c, newTestConfig(), zap.NewNop())
	return svc, store, scheduler, c
}

func int64Ptr(v int64) *int64 { return &v }

func TestTrackActivityNewUser(t *testing.T) {
	svc, store, scheduler, _ := newPointsHarness(t)

	res, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{
		UserID:       1,
		ActivityType: "EVENT_ATTENDED",
		Metadata:     map[string]interface{}{"eventName": "Go Meetup"},
	})
	require.NoError(t, err)

	assert.Equal(t, 30, res.PointsAwarded)
	assert.Equal(t, 30, res.TotalPoints)
	assert.Equal(t, "Newcomer", res.ReputationTier.Name)
	assert.False(t, res.AlreadyTracked)
	assert.Empty(t, res.NewBadges)
	require.NotNil(t, res.Activity)
	assert.Equal(t, models.ActivityStatusVerified, res.Activity.Status)

	summary, err := store.GetByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 30, summary.Breakdown.Events)
	assert.Equal(t, 1, summary.Stats.EventsAttended)
	assert.Equal(t, summary.TotalPoints, summary.Breakdown.Sum())

	assert.Equal(t, []int64{1}, scheduler.calls())
}

func TestTrackActivityDuplicateOneShot(t *testing.T) {
	svc, store, scheduler, _ := newPointsHarness(t)
	ctx := context.Background()

	first, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          2,
		ActivityType:    "HACKATHON_WON",
		RelatedEntityID: int64Ptr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 200, first.PointsAwarded)
	assert.Equal(t, 200, first.TotalPoints)
	assert.Equal(t, "Explorer", first.ReputationTier.Name)

	second, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          2,
		ActivityType:    "HACKATHON_WON",
		RelatedEntityID: int64Ptr(7),
	})
	require.NoError(t, err)
	assert.True(t, second.AlreadyTracked)
	assert.Zero(t, second.PointsAwarded)
	assert.Equal(t, 200, second.TotalPoints)
	require.NotNil(t, second.Activity)
	assert.Equal(t, first.Activity.ID, second.Activity.ID)

	recent, err := store.ListRecent(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1, "the duplicate must not produce a second record")

	summary, _ := store.GetByUser(ctx, 2)
	assert.Equal(t, 1, summary.Stats.HackathonsWon)
	assert.Equal(t, []int64{2}, scheduler.calls(), "duplicates must not trigger rank recomputes")
}

func TestTrackActivityDistinctEntitiesBothAward(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	_, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          3,
		ActivityType:    "HACKATHON_APPLIED",
		RelatedEntityID: int64Ptr(10),
	})
	require.NoError(t, err)

	res, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          3,
		ActivityType:    "HACKATHON_APPLIED",
		RelatedEntityID: int64Ptr(11),
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyTracked)
	assert.Equal(t, 20, res.TotalPoints)
}

func TestTrackActivityRepeatableTypeNeverDedups(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := svc.TrackActivity(ctx, &TrackActivityRequest{
			UserID:       4,
			ActivityType: "PROFILE_VIEWED",
		})
		require.NoError(t, err)
		assert.False(t, res.AlreadyTracked)
	}

	summary, err := svc.GetSummary(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalPoints)
	assert.Equal(t, 3, summary.Breakdown.Social)
}

func TestTrackActivityInvalidType(t *testing.T) {
	svc, store, scheduler, _ := newPointsHarness(t)

	_, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{
		UserID:       5,
		ActivityType: "COSMIC_RAY_DETECTED",
	})
	require.Error(t, err)

	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ACTIVITY_TYPE", se.Code)
	assert.Equal(t, http.StatusBadRequest, se.GetStatusCode())

	recent, _ := store.ListRecent(context.Background(), 5, 10)
	assert.Empty(t, recent, "rejected types must leave no record")
	assert.Empty(t, scheduler.calls())
}

func TestTrackActivityMissingType(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)

	_, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{UserID: 5})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", se.Type)
}

func TestTrackActivityTotalEqualsBreakdownSum(t *testing.T) {
	svc, store, _, _ := newPointsHarness(t)
	ctx := context.Background()

	sequence := []TrackActivityRequest{
		{UserID: 6, ActivityType: "HACKATHON_PARTICIPATED", RelatedEntityID: int64Ptr(1)},
		{UserID: 6, ActivityType: "INTERNSHIP_APPLIED", RelatedEntityID: int64Ptr(2)},
		{UserID: 6, ActivityType: "SKILL_ADDED"},
		{UserID: 6, ActivityType: "CONNECTION_MADE"},
		{UserID: 6, ActivityType: "PROJECT_SUBMITTED", RelatedEntityID: int64Ptr(3)},
	}

	prevTotal := 0
	for i := range sequence {
		res, err := svc.TrackActivity(ctx, &sequence[i])
		require.NoError(t, err)
		assert.Greater(t, res.TotalPoints, prevTotal, "totals only ever increase")
		prevTotal = res.TotalPoints

		summary, err := store.GetByUser(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, summary.TotalPoints, summary.Breakdown.Sum())
	}

	// 50 + 15 + 5 + 8 + 40
	assert.Equal(t, 118, prevTotal)
}

func TestTrackActivityBadgeUnlock(t *testing.T) {
	svc, store, _, _ := newPointsHarness(t)

	res, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{
		UserID:       7,
		ActivityType: "PROFILE_COMPLETED",
	})
	require.NoError(t, err)

	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, "Profile Perfectionist", res.NewBadges[0].Name)
	assert.Equal(t, 100, res.NewBadges[0].PointsAwarded)
	// 100 for the activity plus the 100 badge bonus.
	assert.Equal(t, 200, res.TotalPoints)
	assert.Equal(t, "Explorer", res.ReputationTier.Name)

	summary, _ := store.GetByUser(context.Background(), 7)
	assert.Equal(t, 100, summary.Breakdown.Profile)
	assert.Equal(t, 100, summary.Breakdown.Engagement, "badge bonuses land in engagement")
	assert.Equal(t, summary.TotalPoints, summary.Breakdown.Sum())
	assert.Equal(t, 1, summary.Stats.BadgesEarned)
}

func TestTrackActivityBadgeAwardedOnce(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	for i := int64(1); i <= 6; i++ {
		res, err := svc.TrackActivity(ctx, &TrackActivityRequest{
			UserID:          8,
			ActivityType:    "HACKATHON_PARTICIPATED",
			RelatedEntityID: int64Ptr(i),
		})
		require.NoError(t, err)
		if i == 5 {
			require.Len(t, res.NewBadges, 1)
			assert.Equal(t, "Hackathon Hunter", res.NewBadges[0].Name)
		} else {
			assert.Empty(t, res.NewBadges)
		}
	}
}

func TestTrackActivityPendingStatus(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)

	res, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{
		UserID:          9,
		ActivityType:    "PROJECT_SUBMITTED",
		RelatedEntityID: int64Ptr(4),
		Pending:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ActivityStatusPending, res.Activity.Status)
	assert.Equal(t, 40, res.PointsAwarded, "points are awarded regardless of review status")
}

func TestTrackActivityTransactionFailure(t *testing.T) {
	svc, store, scheduler, _ := newPointsHarness(t)
	store.awardErr = errors.New("deadlock detected")

	_, err := svc.TrackActivity(context.Background(), &TrackActivityRequest{
		UserID:       10,
		ActivityType: "EVENT_ATTENDED",
	})
	require.Error(t, err)

	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "TRANSACTION_FAILED", se.Code)
	assert.Equal(t, http.StatusInternalServerError, se.GetStatusCode())
	assert.Empty(t, scheduler.calls())
}

func TestTrackActivityInvalidatesReadCaches(t *testing.T) {
	svc, _, _, c := newPointsHarness(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test:leaderboard:all:all-time:50", []byte("stale"), time.Minute))
	require.NoError(t, c.Set(ctx, "test:platform-stats", []byte("stale"), time.Minute))

	_, err := svc.TrackActivity(ctx, &TrackActivityRequest{UserID: 11, ActivityType: "SKILL_VERIFIED"})
	require.NoError(t, err)

	_, ok := c.Get(ctx, "test:leaderboard:all:all-time:50")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "test:platform-stats")
	assert.False(t, ok)
}

func TestRecordDailyLoginFirstDay(t *testing.T) {
	svc, store, scheduler, _ := newPointsHarness(t)
	ctx := context.Background()

	res, err := svc.RecordDailyLogin(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, res.PointsAwarded)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 1, res.LongestStreak)
	assert.Zero(t, res.StreakBonus)
	assert.False(t, res.AlreadyLoggedToday)
	assert.Equal(t, 5, res.TotalPoints)

	again, err := svc.RecordDailyLogin(ctx, 20)
	require.NoError(t, err)
	assert.True(t, again.AlreadyLoggedToday)
	assert.Zero(t, again.PointsAwarded)
	assert.Equal(t, 1, again.Streak)
	assert.Equal(t, 5, again.TotalPoints)

	recent, _ := store.ListRecent(ctx, 20, 10)
	assert.Len(t, recent, 1, "the second login that day must not write a record")
	assert.Equal(t, []int64{20}, scheduler.calls())
}

func TestRecordDailyLoginStreakBonusAndBadge(t *testing.T) {
	svc, store, _, _ := newPointsHarness(t)
	ctx := context.Background()

	// Six consecutive days already logged, last of them yesterday.
	seed, err := store.EnsureDefault(ctx, 21)
	require.NoError(t, err)
	seed.CurrentStreak = 6
	seed.LongestStreak = 6
	seed.LastActivityDate = time.Now().AddDate(0, 0, -1)

	res, err := svc.RecordDailyLogin(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Streak)
	assert.Equal(t, 10, res.StreakBonus)
	assert.Equal(t, 15, res.PointsAwarded)
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, "Week Warrior", res.NewBadges[0].Name)
	// 5 base + 10 bonus + 50 badge.
	assert.Equal(t, 65, res.TotalPoints)

	summary, _ := store.GetByUser(ctx, 21)
	assert.Equal(t, 7, summary.LongestStreak)
	assert.Equal(t, summary.TotalPoints, summary.Breakdown.Sum())
}

func TestRecordDailyLoginStreakReset(t *testing.T) {
	svc, store, _, _ := newPointsHarness(t)
	ctx := context.Background()

	seed, err := store.EnsureDefault(ctx, 22)
	require.NoError(t, err)
	seed.CurrentStreak = 12
	seed.LongestStreak = 12
	seed.LastActivityDate = time.Now().AddDate(0, 0, -3)

	res, err := svc.RecordDailyLogin(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak, "a gap of two or more days resets the streak")
	assert.Equal(t, 12, res.LongestStreak, "the longest streak survives a reset")
	assert.Equal(t, 5, res.PointsAwarded)
}

func TestGetMyPoints(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.TrackActivity(ctx, &TrackActivityRequest{UserID: 30, ActivityType: "PROFILE_VIEWED"})
		require.NoError(t, err)
	}

	res, err := svc.GetMyPoints(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Summary.TotalPoints)
	assert.Len(t, res.RecentActivities, 10, "the feed is capped at ten entries")
}

func TestGetMyPointsUnknownUser(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)

	res, err := svc.GetMyPoints(context.Background(), 31)
	require.NoError(t, err)
	assert.Zero(t, res.Summary.TotalPoints)
	assert.Equal(t, "Newcomer", res.Summary.ReputationTier.Name)
	assert.Empty(t, res.RecentActivities)
}

func TestVerifyActivityTransitions(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	tracked, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          40,
		ActivityType:    "PROJECT_VERIFIED",
		RelatedEntityID: int64Ptr(9),
		Pending:         true,
	})
	require.NoError(t, err)

	verified, err := svc.VerifyActivity(ctx, &VerifyActivityRequest{
		ActivityID: tracked.Activity.ID,
		ReviewerID: 99,
		Approve:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityStatusVerified, verified.Status)
	require.NotNil(t, verified.Activity.VerifiedBy)
	assert.Equal(t, int64(99), *verified.Activity.VerifiedBy)
	assert.NotNil(t, verified.Activity.VerifiedAt)

	_, err = svc.VerifyActivity(ctx, &VerifyActivityRequest{
		ActivityID: tracked.Activity.ID,
		ReviewerID: 99,
		Approve:    false,
	})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_REVIEWED", se.Code)
	assert.Equal(t, http.StatusConflict, se.GetStatusCode())
}

func TestVerifyActivityRejection(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)
	ctx := context.Background()

	tracked, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:       41,
		ActivityType: "CERTIFICATION_ADDED",
		Pending:      true,
	})
	require.NoError(t, err)

	res, err := svc.VerifyActivity(ctx, &VerifyActivityRequest{
		ActivityID: tracked.Activity.ID,
		ReviewerID: 99,
		Approve:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityStatusRejected, res.Status)
}

func TestVerifyActivityNotFound(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)

	_, err := svc.VerifyActivity(context.Background(), &VerifyActivityRequest{
		ActivityID: 12345,
		ReviewerID: 99,
		Approve:    true,
	})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.GetStatusCode())
}

func TestInitializeUserBackfill(t *testing.T) {
	svc, _, scheduler, _ := newPointsHarness(t)
	ctx := context.Background()

	res, err := svc.InitializeUser(ctx, &InitializeUserRequest{
		UserID:                 50,
		HackathonsParticipated: 2,
		HackathonsWon:          1,
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	// 2*50 + 1*200.
	assert.Equal(t, 300, res.Summary.TotalPoints)
	assert.Equal(t, "Contributor", res.Summary.ReputationTier.Name)
	assert.Equal(t, 2, res.Summary.Stats.HackathonsParticipated)
	assert.Equal(t, []int64{50}, scheduler.calls())

	again, err := svc.InitializeUser(ctx, &InitializeUserRequest{
		UserID:                 50,
		HackathonsParticipated: 9,
	})
	require.NoError(t, err)
	assert.False(t, again.Created, "an existing summary is never overwritten")
	assert.Equal(t, 300, again.Summary.TotalPoints)
	assert.Equal(t, []int64{50}, scheduler.calls(), "reruns must not enqueue recomputes")
}

func TestInitializeUserSeedsNoBadges(t *testing.T) {
	svc, store, _, _ := newPointsHarness(t)
	ctx := context.Background()

	// Backfill seeds counters and totals only; badges unlock through tracked
	// activity, not through historical import.
	res, err := svc.InitializeUser(ctx, &InitializeUserRequest{
		UserID:                 52,
		HackathonsParticipated: 6,
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 6, res.Summary.Stats.HackathonsParticipated)
	assert.Empty(t, res.Summary.Badges)
	assert.Zero(t, res.Summary.Stats.BadgesEarned)

	// The next tracked activity runs the sweep over the seeded counters.
	award, err := svc.TrackActivity(ctx, &TrackActivityRequest{
		UserID:          52,
		ActivityType:    "HACKATHON_PARTICIPATED",
		RelatedEntityID: int64Ptr(700),
	})
	require.NoError(t, err)
	require.Len(t, award.NewBadges, 1)
	assert.Equal(t, "Hackathon Hunter", award.NewBadges[0].Name)

	summary, _ := store.GetByUser(ctx, 52)
	assert.Equal(t, summary.TotalPoints, summary.Breakdown.Sum())
}

func TestInitializeUserValidation(t *testing.T) {
	svc, _, _, _ := newPointsHarness(t)

	_, err := svc.InitializeUser(context.Background(), &InitializeUserRequest{
		UserID:        51,
		HackathonsWon: -1,
	})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", se.Type)
}
