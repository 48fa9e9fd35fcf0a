package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"opphub/internal/database"
	"opphub/internal/models"
	"opphub/internal/points"

	"go.uber.org/zap"
)

// activityRepository implements ActivityRepository over the user_activities
// audit table.
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const activityColumns = `
	id, user_id, activity_type, points_awarded, metadata,
	related_entity_id, related_entity_type, status,
	verified_by, verified_at, created_at`

// GetByID retrieves a single activity record.
func (r *activityRepository) GetByID(ctx context.Context, id int64) (*models.ActivityRecord, error) {
	query := `SELECT` + activityColumns + ` FROM user_activities WHERE id = $1`

	activity, err := scanActivity(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	return activity, nil
}

// ListRecent returns a user's most recent activity records, newest first.
func (r *activityRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*models.ActivityRecord, error) {
	query := `
		SELECT` + activityColumns + `
		FROM user_activities
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.ActivityRecord
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// GetRecentMatch looks for a prior record of the same one-shot action within
// the duplicate-suppression window.
func (r *activityRepository) GetRecentMatch(ctx context.Context, userID int64, activityType points.ActivityType, relatedEntityID *int64, since time.Time) (*models.ActivityRecord, error) {
	query := `
		SELECT` + activityColumns + `
		FROM user_activities
		WHERE user_id = $1
		  AND activity_type = $2
		  AND (related_entity_id = $3 OR ($3::bigint IS NULL AND related_entity_id IS NULL))
		  AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`

	activity, err := scanActivity(r.QueryRowContext(ctx, query, userID, string(activityType), relatedEntityID, since))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check duplicate window: %w", err)
	}
	return activity, nil
}

// SetStatus transitions a pending record to verified or rejected. The WHERE
// clause makes the transition single-shot; a non-pending record is untouched.
func (r *activityRepository) SetStatus(ctx context.Context, id int64, status string, reviewerID int64) (bool, error) {
	query := `
		UPDATE user_activities
		SET status = $2, verified_by = $3, verified_at = now()
		WHERE id = $1 AND status = $4`

	result, err := r.ExecContext(ctx, query, id, status, reviewerID, models.ActivityStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update activity status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*models.ActivityRecord, error) {
	var (
		activity models.ActivityRecord
		rawMeta  []byte
	)
	err := row.Scan(
		&activity.ID, &activity.UserID, &activity.ActivityType,
		&activity.PointsAwarded, &rawMeta,
		&activity.RelatedEntityID, &activity.RelatedEntityType,
		&activity.Status, &activity.VerifiedBy, &activity.VerifiedAt,
		&activity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &activity.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
	}
	return &activity, nil
}

func insertActivityTx(tx *sql.Tx, ctx context.Context, m *AwardMutation, now time.Time) (*models.ActivityRecord, error) {
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	rawMeta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	status := m.Status
	if status == "" {
		status = models.ActivityStatusVerified
	}

	query := `
		INSERT INTO user_activities (
			user_id, activity_type, points_awarded, metadata,
			related_entity_id, related_entity_type, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	activity := &models.ActivityRecord{
		UserID:            m.UserID,
		ActivityType:      m.Definition.Type,
		PointsAwarded:     m.Points,
		Metadata:          metadata,
		RelatedEntityID:   m.RelatedEntityID,
		RelatedEntityType: m.RelatedEntityType,
		Status:            status,
	}
	err = tx.QueryRowContext(
		ctx, query,
		m.UserID, string(m.Definition.Type), m.Points, rawMeta,
		m.RelatedEntityID, m.RelatedEntityType, status, now,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity record: %w", err)
	}
	return activity, nil
}
