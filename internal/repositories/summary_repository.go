package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"opphub/internal/database"
	"opphub/internal/models"
	"opphub/internal/points"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// summaryRepository implements SummaryRepository over the user_points and
// user_badges tables. Every mutation of a summary row goes through here so the
// activity record and the increment always commit together.
type summaryRepository struct {
	*BaseRepository
}

// NewSummaryRepository creates a new summary repository.
func NewSummaryRepository(db *database.Manager, logger *zap.Logger) SummaryRepository {
	return &summaryRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// breakdownColumns whitelists the category -> column mapping. SQL column names
// are only ever taken from this table, never from request input.
var breakdownColumns = map[points.Category]string{
	points.CategoryHackathons:  "breakdown_hackathons",
	points.CategoryInternships: "breakdown_internships",
	points.CategoryEvents:      "breakdown_events",
	points.CategoryProfile:     "breakdown_profile",
	points.CategorySocial:      "breakdown_social",
	points.CategoryEngagement:  "breakdown_engagement",
	points.CategoryProjects:    "breakdown_projects",
}

// statColumns whitelists the stat-counter columns bumped by specific activity
// types.
var statColumns = map[points.StatCounter]string{
	points.StatHackathonsParticipated: "hackathons_participated",
	points.StatHackathonsWon:          "hackathons_won",
	points.StatInternshipsCompleted:   "internships_completed",
	points.StatEventsAttended:         "events_attended",
	points.StatProjectsSubmitted:      "projects_submitted",
}

const summaryColumns = `
	user_id, total_points,
	breakdown_hackathons, breakdown_internships, breakdown_events,
	breakdown_profile, breakdown_social, breakdown_engagement, breakdown_projects,
	hackathons_participated, hackathons_won, internships_completed,
	events_attended, projects_submitted, badges_earned, profile_completion,
	current_rank, previous_rank, rank_change,
	current_streak, longest_streak, last_activity_date,
	tier_name, tier_icon, tier_color, tier_min_score, tier_max_score,
	last_updated, created_at`

// ===============================
// READS
// ===============================

// GetByUser loads a summary with its earned badges. Returns nil when the user
// has no summary yet.
func (r *summaryRepository) GetByUser(ctx context.Context, userID int64) (*models.PointsSummary, error) {
	query := `SELECT` + summaryColumns + ` FROM user_points WHERE user_id = $1`

	summary, err := scanSummary(r.QueryRowContext(ctx, query, userID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get points summary: %w", err)
	}

	badges, err := r.BadgesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Badges = badges
	return summary, nil
}

// EnsureDefault lazily creates a zeroed summary row.
func (r *summaryRepository) EnsureDefault(ctx context.Context, userID int64) (*models.PointsSummary, error) {
	_, err := r.ExecContext(ctx,
		`INSERT INTO user_points (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default summary: %w", err)
	}
	return r.GetByUser(ctx, userID)
}

// BadgesFor lists a user's earned badges in earn order.
func (r *summaryRepository) BadgesFor(ctx context.Context, userID int64) ([]models.EarnedBadge, error) {
	query := `
		SELECT name, icon, description, points_awarded, earned_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []models.EarnedBadge
	for rows.Next() {
		var b models.EarnedBadge
		if err := rows.Scan(&b.Name, &b.Icon, &b.Description, &b.PointsAwarded, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ===============================
// AWARD PATH
// ===============================

// ApplyAward writes the activity record and the summary increments in a single
// transaction, then runs the badge sweep and refreshes the tier snapshot.
// Either everything commits or nothing does.
func (r *summaryRepository) ApplyAward(ctx context.Context, m *AwardMutation) (*AwardOutcome, error) {
	now := time.Now()
	var out *AwardOutcome

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		activity, err := insertActivityTx(tx, ctx, m, now)
		if err != nil {
			return err
		}

		if err := r.upsertIncrementTx(tx, ctx, m, now); err != nil {
			return err
		}

		summary, err := r.loadSummaryTx(tx, ctx, m.UserID, false)
		if err != nil {
			return err
		}

		newBadges, err := r.badgeSweepTx(tx, ctx, summary, now)
		if err != nil {
			return err
		}

		if err := r.applyTierTx(tx, ctx, summary); err != nil {
			return err
		}

		out = &AwardOutcome{Activity: activity, Summary: summary, NewBadges: newBadges}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// upsertIncrementTx applies the atomic increment: total, breakdown bucket, and
// any stat counter, creating the row when absent. The increment never goes
// through application-level read-modify-write.
func (r *summaryRepository) upsertIncrementTx(tx *sql.Tx, ctx context.Context, m *AwardMutation, now time.Time) error {
	bCol, ok := breakdownColumns[m.Definition.Category]
	if !ok {
		bCol = breakdownColumns[points.CategoryEngagement]
	}

	insertCols := []string{"user_id", "total_points", bCol, "last_activity_date", "last_updated"}
	insertVals := []string{"$1", "$2", "$2", "$3", "$3"}
	updates := []string{
		"total_points = user_points.total_points + $2",
		fmt.Sprintf("%s = user_points.%s + $2", bCol, bCol),
		"last_activity_date = $3",
		"last_updated = $3",
	}

	if m.Definition.Stat != "" {
		if sCol, ok := statColumns[m.Definition.Stat]; ok {
			insertCols = append(insertCols, sCol)
			insertVals = append(insertVals, "1")
			updates = append(updates, fmt.Sprintf("%s = user_points.%s + 1", sCol, sCol))
		}
	}

	if m.Definition.Type == points.ProfileCompleted {
		insertCols = append(insertCols, "profile_completion")
		insertVals = append(insertVals, "100")
		updates = append(updates, "profile_completion = GREATEST(user_points.profile_completion, 100)")
	}

	query := fmt.Sprintf(
		`INSERT INTO user_points (%s) VALUES (%s) ON CONFLICT (user_id) DO UPDATE SET %s`,
		strings.Join(insertCols, ", "),
		strings.Join(insertVals, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := tx.ExecContext(ctx, query, m.UserID, m.Points, now); err != nil {
		return fmt.Errorf("failed to apply summary increment: %w", err)
	}
	return nil
}

// ApplyDailyLogin runs the streak algorithm under a row lock so two same-day
// logins cannot both count.
func (r *summaryRepository) ApplyDailyLogin(ctx context.Context, userID int64, now time.Time) (*DailyLoginOutcome, error) {
	var out *DailyLoginOutcome

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_points (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to ensure summary row: %w", err)
		}

		summary, err := r.loadSummaryTx(tx, ctx, userID, true)
		if err != nil {
			return err
		}

		if points.SameCalendarDay(summary.LastActivityDate, now) {
			out = &DailyLoginOutcome{
				AlreadyLoggedToday: true,
				Streak:             summary.CurrentStreak,
				LongestStreak:      summary.LongestStreak,
				Summary:            summary,
			}
			return nil
		}

		newStreak, _ := points.NextStreak(summary.LastActivityDate, now, summary.CurrentStreak)
		bonus := points.StreakBonus(newStreak)
		def, _ := points.Lookup(points.DailyLogin)
		awarded := def.Points + bonus

		mutation := &AwardMutation{
			UserID:     userID,
			Definition: def,
			Points:     awarded,
			Metadata: map[string]interface{}{
				"streak":       newStreak,
				"streak_bonus": bonus,
			},
		}
		if _, err := insertActivityTx(tx, ctx, mutation, now); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_points SET
				total_points = total_points + $2,
				breakdown_engagement = breakdown_engagement + $2,
				current_streak = $3,
				longest_streak = GREATEST(longest_streak, $3),
				last_activity_date = $4,
				last_updated = $4
			WHERE user_id = $1`,
			userID, awarded, newStreak, now,
		)
		if err != nil {
			return fmt.Errorf("failed to apply daily login: %w", err)
		}

		summary.TotalPoints += awarded
		summary.Breakdown.Engagement += awarded
		summary.CurrentStreak = newStreak
		if newStreak > summary.LongestStreak {
			summary.LongestStreak = newStreak
		}
		summary.LastActivityDate = now
		summary.LastUpdated = now

		newBadges, err := r.badgeSweepTx(tx, ctx, summary, now)
		if err != nil {
			return err
		}

		if err := r.applyTierTx(tx, ctx, summary); err != nil {
			return err
		}

		out = &DailyLoginOutcome{
			PointsAwarded: awarded,
			Streak:        newStreak,
			LongestStreak: summary.LongestStreak,
			StreakBonus:   bonus,
			NewBadges:     newBadges,
			Summary:       summary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// badgeSweepTx evaluates the badge catalog against the refreshed summary and
// persists anything newly unlocked. Badge bonuses land in the engagement
// bucket so the total always equals the breakdown sum.
func (r *summaryRepository) badgeSweepTx(tx *sql.Tx, ctx context.Context, summary *models.PointsSummary, now time.Time) ([]models.EarnedBadge, error) {
	unlocked := points.EvaluateBadges(summary.BadgeStats(), summary.EarnedBadgeNames())
	if len(unlocked) == 0 {
		return nil, nil
	}

	bonus := 0
	newBadges := make([]models.EarnedBadge, 0, len(unlocked))
	for _, def := range unlocked {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_badges (user_id, name, icon, description, points_awarded, earned_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			summary.UserID, def.Name, def.Icon, def.Description, def.Points, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert badge %q: %w", def.Name, err)
		}
		earned := models.EarnedBadge{
			Name:          def.Name,
			Icon:          def.Icon,
			Description:   def.Description,
			PointsAwarded: def.Points,
			EarnedAt:      now,
		}
		newBadges = append(newBadges, earned)
		summary.Badges = append(summary.Badges, earned)
		bonus += def.Points
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE user_points SET
			total_points = total_points + $2,
			breakdown_engagement = breakdown_engagement + $2,
			badges_earned = badges_earned + $3,
			last_updated = $4
		WHERE user_id = $1`,
		summary.UserID, bonus, len(newBadges), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to apply badge bonuses: %w", err)
	}

	summary.TotalPoints += bonus
	summary.Breakdown.Engagement += bonus
	summary.Stats.BadgesEarned += len(newBadges)
	summary.LastUpdated = now

	return newBadges, nil
}

// applyTierTx refreshes the denormalized tier snapshot from the current total.
func (r *summaryRepository) applyTierTx(tx *sql.Tx, ctx context.Context, summary *models.PointsSummary) error {
	tier := points.TierFor(summary.TotalPoints)
	_, err := tx.ExecContext(ctx, `
		UPDATE user_points SET
			tier_name = $2, tier_icon = $3, tier_color = $4,
			tier_min_score = $5, tier_max_score = $6
		WHERE user_id = $1`,
		summary.UserID, tier.Name, tier.Icon, tier.Color, tier.MinScore, tier.MaxScore,
	)
	if err != nil {
		return fmt.Errorf("failed to update tier snapshot: %w", err)
	}
	summary.ReputationTier = tier
	return nil
}

// loadSummaryTx reads a summary row inside a transaction, optionally locking
// it for the duration.
func (r *summaryRepository) loadSummaryTx(tx *sql.Tx, ctx context.Context, userID int64, forUpdate bool) (*models.PointsSummary, error) {
	query := `SELECT` + summaryColumns + ` FROM user_points WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	summary, err := scanSummary(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT name, icon, description, points_awarded, earned_at
		FROM user_badges WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.EarnedBadge
		if err := rows.Scan(&b.Name, &b.Icon, &b.Description, &b.PointsAwarded, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		summary.Badges = append(summary.Badges, b)
	}
	return summary, rows.Err()
}

// ===============================
// RANKING
// ===============================

// Rank computes a user's live position: one plus the count of summaries with a
// strictly greater total. Users without a summary rank as if they had zero
// points.
func (r *summaryRepository) Rank(ctx context.Context, userID int64) (int, error) {
	var rank int
	err := r.QueryRowContext(ctx, `
		SELECT 1 + COUNT(*)
		FROM user_points
		WHERE total_points > COALESCE(
			(SELECT total_points FROM user_points WHERE user_id = $1), 0)`,
		userID,
	).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return rank, nil
}

// RecomputeRank persists the current rank for one user. On the first
// computation previous_rank takes the fresh value, so rank_change starts at
// zero.
func (r *summaryRepository) RecomputeRank(ctx context.Context, userID int64) error {
	result, err := r.ExecContext(ctx, `
		UPDATE user_points SET
			previous_rank = COALESCE(user_points.current_rank, sub.rank),
			current_rank = sub.rank,
			rank_change = COALESCE(user_points.current_rank, sub.rank) - sub.rank
		FROM (
			SELECT 1 + COUNT(*) AS rank
			FROM user_points p
			WHERE p.total_points > COALESCE(
				(SELECT total_points FROM user_points WHERE user_id = $1), 0)
		) sub
		WHERE user_points.user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to recompute rank: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("no summary for user %d", userID)
	}
	return nil
}

// RecomputeAllRanks reassigns every rank in one statement. Equal totals share
// a rank number, matching the per-user formula.
func (r *summaryRepository) RecomputeAllRanks(ctx context.Context) (int64, error) {
	result, err := r.ExecContext(ctx, `
		WITH ranked AS (
			SELECT user_id, RANK() OVER (ORDER BY total_points DESC) AS new_rank
			FROM user_points
		)
		UPDATE user_points u SET
			previous_rank = COALESCE(u.current_rank, r.new_rank),
			current_rank = r.new_rank,
			rank_change = COALESCE(u.current_rank, r.new_rank) - r.new_rank
		FROM ranked r
		WHERE u.user_id = r.user_id`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute all ranks: %w", err)
	}
	return result.RowsAffected()
}

// Nearby returns the users within a points window around the given user,
// highest first, with their live global ranks.
func (r *summaryRepository) Nearby(ctx context.Context, userID int64, pointsWindow, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		WITH ranked AS (
			SELECT` + summaryColumns + `,
				RANK() OVER (ORDER BY total_points DESC) AS live_rank
			FROM user_points
		)
		SELECT ` + leaderboardSelect("ranked") + `, live_rank
		FROM ranked
		WHERE total_points BETWEEN
			GREATEST(0, (SELECT total_points FROM user_points WHERE user_id = $1) - $2)
			AND (SELECT total_points FROM user_points WHERE user_id = $1) + $2
		ORDER BY total_points DESC, last_updated DESC
		LIMIT $3`

	rows, err := r.QueryContext(ctx, query, userID, pointsWindow, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load nearby users: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry, err := scanLeaderboardEntry(rows, true)
		if err != nil {
			return nil, err
		}
		entry.Points = entry.TotalPoints
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBadges(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ===============================
// LEADERBOARD & STATS
// ===============================

// Leaderboard returns the top summaries sorted by total or by one breakdown
// category, optionally restricted to recently active users. Rank numbers
// follow page order.
func (r *summaryRepository) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]*models.LeaderboardEntry, error) {
	sortCol := "total_points"
	if q.Category != "" && q.Category != "all" {
		col, ok := breakdownColumns[points.Category(q.Category)]
		if !ok {
			return nil, fmt.Errorf("unknown leaderboard category %q", q.Category)
		}
		sortCol = col
	}

	where := "total_points > 0"
	args := []interface{}{q.Limit}
	if q.Since != nil {
		where += " AND last_activity_date >= $2"
		args = append(args, *q.Since)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM user_points
		WHERE %s
		ORDER BY %s DESC, last_updated DESC
		LIMIT $1`,
		leaderboardSelect("user_points"), where, sortCol,
	)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry, err := scanLeaderboardEntry(rows, false)
		if err != nil {
			return nil, err
		}
		entry.Rank = len(entries) + 1
		entry.Points = entry.TotalPoints
		if sortCol != "total_points" {
			entry.Points = entry.Breakdown.ForCategory(points.Category(q.Category))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBadges(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountActive counts summaries with points, optionally restricted by last
// activity.
func (r *summaryRepository) CountActive(ctx context.Context, since *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM user_points WHERE total_points > 0`
	var args []interface{}
	if since != nil {
		query += ` AND last_activity_date >= $1`
		args = append(args, *since)
	}

	var count int64
	if err := r.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// PlatformStats aggregates totals and the tier distribution across all users.
func (r *summaryRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}
	err := r.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_points), 0),
			COALESCE(AVG(total_points), 0),
			COALESCE(SUM(hackathons_participated), 0),
			COALESCE(SUM(internships_completed), 0),
			COALESCE(SUM(events_attended), 0),
			COALESCE(SUM(projects_submitted), 0)
		FROM user_points`,
	).Scan(
		&stats.TotalUsers, &stats.TotalPoints, &stats.AvgPoints,
		&stats.TotalHackathons, &stats.TotalInternships,
		&stats.TotalEvents, &stats.TotalProjects,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platform stats: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT tier_name, COUNT(*)
		FROM user_points
		GROUP BY tier_name
		ORDER BY MIN(tier_min_score)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc models.TierCount
		if err := rows.Scan(&tc.Tier, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tier distribution: %w", err)
		}
		stats.TierDistribution = append(stats.TierDistribution, tc)
	}
	return stats, rows.Err()
}

// ===============================
// BACKFILL
// ===============================

// InitializeUser seeds a summary from pre-existing history using the catalog
// point values. Existing summaries are left untouched.
func (r *summaryRepository) InitializeUser(ctx context.Context, userID int64, seed InitialStats) (*models.PointsSummary, bool, error) {
	hackPoints := seed.HackathonsParticipated*50 + seed.HackathonsWon*200
	internPoints := seed.InternshipsCompleted * 250
	eventPoints := seed.EventsAttended * 30
	profilePoints := 0
	profileCompletion := 0
	if seed.ProfileComplete {
		profilePoints = 100
		profileCompletion = 100
	}
	total := hackPoints + internPoints + eventPoints + profilePoints
	tier := points.TierFor(total)

	result, err := r.ExecContext(ctx, `
		INSERT INTO user_points (
			user_id, total_points,
			breakdown_hackathons, breakdown_internships, breakdown_events, breakdown_profile,
			hackathons_participated, hackathons_won, internships_completed, events_attended,
			profile_completion,
			tier_name, tier_icon, tier_color, tier_min_score, tier_max_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, total,
		hackPoints, internPoints, eventPoints, profilePoints,
		seed.HackathonsParticipated, seed.HackathonsWon,
		seed.InternshipsCompleted, seed.EventsAttended,
		profileCompletion,
		tier.Name, tier.Icon, tier.Color, tier.MinScore, tier.MaxScore,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to initialize summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	summary, err := r.GetByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return summary, affected > 0, nil
}

// ===============================
// SCAN HELPERS
// ===============================

func scanSummary(row rowScanner) (*models.PointsSummary, error) {
	var s models.PointsSummary
	err := row.Scan(
		&s.UserID, &s.TotalPoints,
		&s.Breakdown.Hackathons, &s.Breakdown.Internships, &s.Breakdown.Events,
		&s.Breakdown.Profile, &s.Breakdown.Social, &s.Breakdown.Engagement, &s.Breakdown.Projects,
		&s.Stats.HackathonsParticipated, &s.Stats.HackathonsWon, &s.Stats.InternshipsCompleted,
		&s.Stats.EventsAttended, &s.Stats.ProjectsSubmitted, &s.Stats.BadgesEarned, &s.Stats.ProfileCompletion,
		&s.CurrentRank, &s.PreviousRank, &s.RankChange,
		&s.CurrentStreak, &s.LongestStreak, &s.LastActivityDate,
		&s.ReputationTier.Name, &s.ReputationTier.Icon, &s.ReputationTier.Color,
		&s.ReputationTier.MinScore, &s.ReputationTier.MaxScore,
		&s.LastUpdated, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	fillTierDescription(&s.ReputationTier)
	return &s, nil
}

// leaderboardSelect lists the entry columns, qualified by table alias.
func leaderboardSelect(alias string) string {
	cols := []string{
		"user_id", "total_points",
		"breakdown_hackathons", "breakdown_internships", "breakdown_events",
		"breakdown_profile", "breakdown_social", "breakdown_engagement", "breakdown_projects",
		"hackathons_participated", "hackathons_won", "internships_completed",
		"events_attended", "projects_submitted", "badges_earned", "profile_completion",
		"rank_change", "current_streak",
		"tier_name", "tier_icon", "tier_color", "tier_min_score", "tier_max_score",
		"last_updated",
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanLeaderboardEntry(rows *sql.Rows, withRank bool) (*models.LeaderboardEntry, error) {
	var (
		e           models.LeaderboardEntry
		lastUpdated time.Time
	)
	dest := []interface{}{
		&e.UserID, &e.TotalPoints,
		&e.Breakdown.Hackathons, &e.Breakdown.Internships, &e.Breakdown.Events,
		&e.Breakdown.Profile, &e.Breakdown.Social, &e.Breakdown.Engagement, &e.Breakdown.Projects,
		&e.Stats.HackathonsParticipated, &e.Stats.HackathonsWon, &e.Stats.InternshipsCompleted,
		&e.Stats.EventsAttended, &e.Stats.ProjectsSubmitted, &e.Stats.BadgesEarned, &e.Stats.ProfileCompletion,
		&e.RankChange, &e.CurrentStreak,
		&e.ReputationTier.Name, &e.ReputationTier.Icon, &e.ReputationTier.Color,
		&e.ReputationTier.MinScore, &e.ReputationTier.MaxScore,
		&lastUpdated,
	}
	if withRank {
		dest = append(dest, &e.Rank)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
	}
	fillTierDescription(&e.ReputationTier)
	return &e, nil
}

// attachBadges batch-loads badges for a page of leaderboard entries, avoiding
// a query per row.
func (r *summaryRepository) attachBadges(ctx context.Context, entries []*models.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(entries))
	byUser := make(map[int64]*models.LeaderboardEntry, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
		byUser[e.UserID] = e
	}

	rows, err := r.QueryContext(ctx, `
		SELECT user_id, name, icon, description, points_awarded, earned_at
		FROM user_badges
		WHERE user_id = ANY($1)
		ORDER BY user_id, id`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to batch-load badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			b      models.EarnedBadge
		)
		if err := rows.Scan(&userID, &b.Name, &b.Icon, &b.Description, &b.PointsAwarded, &b.EarnedAt); err != nil {
			return fmt.Errorf("failed to scan badge: %w", err)
		}
		if e, ok := byUser[userID]; ok {
			e.Badges = append(e.Badges, b)
		}
	}
	return rows.Err()
}

// fillTierDescription restores the display description dropped from the
// persisted snapshot.
func fillTierDescription(t *points.Tier) {
	for _, known := range points.Tiers {
		if known.Name == t.Name {
			t.Description = known.Description
			return
		}
	}
}
