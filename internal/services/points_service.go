package services

import (
	"context"
	"time"

	"opphub/internal/cache"
	"opphub/internal/config"
	"opphub/internal/models"
	"opphub/internal/points"
	"opphub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// pointsService implements PointsService on top of the transactional
// repositories. All point mutations flow through here.
type pointsService struct {
	activities repositories.ActivityRepository
	summaries  repositories.SummaryRepository
	ranks      RankScheduler
	cache      cache.Cache
	cfg        *config.Config
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewPointsService creates the points engine service.
func NewPointsService(
	activities repositories.ActivityRepository,
	summaries repositories.SummaryRepository,
	ranks RankScheduler,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) PointsService {
	return &pointsService{
		activities: activities,
		summaries:  summaries,
		ranks:      ranks,
		cache:      c,
		cfg:        cfg,
		validate:   validator.New(),
		logger:     logger,
	}
}

// TrackActivity awards points for one reported event. Unknown types are
// rejected before any write; duplicate one-shot reports inside the window
// succeed with zero points and AlreadyTracked set.
func (s *pointsService) TrackActivity(ctx context.Context, req *TrackActivityRequest) (*AwardResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid track-activity request", err)
	}

	def, ok := points.Lookup(points.ActivityType(req.ActivityType))
	if !ok {
		return nil, NewInvalidActivityTypeError(req.ActivityType)
	}

	if def.OneShot {
		since := time.Now().Add(-s.cfg.Points.DedupWindow)
		prior, err := s.activities.GetRecentMatch(ctx, req.UserID, def.Type, req.RelatedEntityID, since)
		if err != nil {
			return nil, NewInternalError("failed to check for duplicate activity")
		}
		if prior != nil {
			summary, err := s.summaries.EnsureDefault(ctx, req.UserID)
			if err != nil {
				return nil, NewInternalError("failed to load points summary")
			}
			s.logger.Debug("Duplicate one-shot activity suppressed",
				zap.Int64("user_id", req.UserID),
				zap.String("activity_type", req.ActivityType),
			)
			return &AwardResult{
				Activity:       prior,
				TotalPoints:    summary.TotalPoints,
				ReputationTier: summary.ReputationTier,
				NewBadges:      []models.EarnedBadge{},
				RankChange:     summary.RankChange,
				AlreadyTracked: true,
			}, nil
		}
	}

	status := models.ActivityStatusVerified
	if req.Pending {
		status = models.ActivityStatusPending
	}

	awardCtx, cancel := context.WithTimeout(ctx, s.cfg.Points.AwardTimeout)
	defer cancel()

	outcome, err := s.summaries.ApplyAward(awardCtx, &repositories.AwardMutation{
		UserID:            req.UserID,
		Definition:        def,
		Points:            def.Points,
		Metadata:          req.Metadata,
		RelatedEntityID:   req.RelatedEntityID,
		RelatedEntityType: req.RelatedEntityType,
		Status:            status,
	})
	if err != nil {
		return nil, NewTransactionFailedError(err)
	}

	s.ranks.Enqueue(req.UserID)
	s.invalidateReadCaches(ctx)

	s.logger.Info("Activity tracked",
		zap.Int64("user_id", req.UserID),
		zap.String("activity_type", req.ActivityType),
		zap.Int("points_awarded", def.Points),
		zap.Int("new_badges", len(outcome.NewBadges)),
	)

	newBadges := outcome.NewBadges
	if newBadges == nil {
		newBadges = []models.EarnedBadge{}
	}
	return &AwardResult{
		Activity:       outcome.Activity,
		PointsAwarded:  def.Points,
		TotalPoints:    outcome.Summary.TotalPoints,
		ReputationTier: outcome.Summary.ReputationTier,
		NewBadges:      newBadges,
		RankChange:     outcome.Summary.RankChange,
	}, nil
}

// RecordDailyLogin applies the streak algorithm once per calendar day.
func (s *pointsService) RecordDailyLogin(ctx context.Context, userID int64) (*DailyLoginResult, error) {
	loginCtx, cancel := context.WithTimeout(ctx, s.cfg.Points.AwardTimeout)
	defer cancel()

	outcome, err := s.summaries.ApplyDailyLogin(loginCtx, userID, time.Now())
	if err != nil {
		return nil, NewTransactionFailedError(err)
	}

	if !outcome.AlreadyLoggedToday {
		s.ranks.Enqueue(userID)
		s.invalidateReadCaches(ctx)
		s.logger.Info("Daily login recorded",
			zap.Int64("user_id", userID),
			zap.Int("streak", outcome.Streak),
			zap.Int("streak_bonus", outcome.StreakBonus),
		)
	}

	newBadges := outcome.NewBadges
	if newBadges == nil {
		newBadges = []models.EarnedBadge{}
	}
	return &DailyLoginResult{
		PointsAwarded:      outcome.PointsAwarded,
		Streak:             outcome.Streak,
		LongestStreak:      outcome.LongestStreak,
		StreakBonus:        outcome.StreakBonus,
		AlreadyLoggedToday: outcome.AlreadyLoggedToday,
		NewBadges:          newBadges,
		TotalPoints:        outcome.Summary.TotalPoints,
	}, nil
}

// GetMyPoints returns the summary plus the recent activity feed, creating the
// summary on first read.
func (s *pointsService) GetMyPoints(ctx context.Context, userID int64) (*MyPointsResponse, error) {
	summary, err := s.summaries.EnsureDefault(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load points summary")
	}

	recent, err := s.activities.ListRecent(ctx, userID, 10)
	if err != nil {
		return nil, NewInternalError("failed to load recent activities")
	}
	if recent == nil {
		recent = []*models.ActivityRecord{}
	}

	return &MyPointsResponse{Summary: summary, RecentActivities: recent}, nil
}

// GetSummary returns the per-user summary, lazily creating it.
func (s *pointsService) GetSummary(ctx context.Context, userID int64) (*models.PointsSummary, error) {
	summary, err := s.summaries.EnsureDefault(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load points summary")
	}
	return summary, nil
}

// VerifyActivity applies the single pending -> verified/rejected transition.
// Points were awarded at creation; verification is a moderation marker on the
// audit record.
func (s *pointsService) VerifyActivity(ctx context.Context, req *VerifyActivityRequest) (*VerifyActivityResult, error) {
	activity, err := s.activities.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, NewInternalError("failed to load activity")
	}
	if activity == nil {
		return nil, NewNotFoundError("activity not found")
	}

	status := models.ActivityStatusRejected
	if req.Approve {
		status = models.ActivityStatusVerified
	}

	applied, err := s.activities.SetStatus(ctx, req.ActivityID, status, req.ReviewerID)
	if err != nil {
		return nil, NewInternalError("failed to update activity status")
	}
	if !applied {
		return nil, NewConflictError("activity has already been reviewed", "ALREADY_REVIEWED")
	}

	activity, err = s.activities.GetByID(ctx, req.ActivityID)
	if err != nil || activity == nil {
		return nil, NewInternalError("failed to reload activity")
	}

	s.logger.Info("Activity reviewed",
		zap.Int64("activity_id", req.ActivityID),
		zap.Int64("reviewer_id", req.ReviewerID),
		zap.String("status", status),
	)

	return &VerifyActivityResult{Activity: activity, Status: status}, nil
}

// InitializeUser backfills a summary from pre-existing history. Existing
// summaries are left alone.
func (s *pointsService) InitializeUser(ctx context.Context, req *InitializeUserRequest) (*InitializeUserResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid initialize request", err)
	}

	summary, created, err := s.summaries.InitializeUser(ctx, req.UserID, repositories.InitialStats{
		HackathonsParticipated: req.HackathonsParticipated,
		HackathonsWon:          req.HackathonsWon,
		InternshipsCompleted:   req.InternshipsCompleted,
		EventsAttended:         req.EventsAttended,
		ProfileComplete:        req.ProfileComplete,
	})
	if err != nil {
		return nil, NewTransactionFailedError(err)
	}

	if created {
		s.ranks.Enqueue(req.UserID)
		s.logger.Info("Backfilled points summary",
			zap.Int64("user_id", req.UserID),
			zap.Int("total_points", summary.TotalPoints),
		)
	}

	return &InitializeUserResult{Summary: summary, Created: created}, nil
}

// invalidateReadCaches drops cached leaderboard and stats pages after a write.
// Failures only cost freshness, so they are logged and swallowed.
func (s *pointsService) invalidateReadCaches(ctx context.Context) {
	prefix := s.cfg.Cache.KeyPrefix
	if err := s.cache.DeletePattern(ctx, prefix+"leaderboard:*"); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, prefix+"platform-stats"); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}
