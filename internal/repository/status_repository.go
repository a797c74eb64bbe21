package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"placement-watch/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StatusRepository interface {
	// Get returns the overlay for the pair, or the all-false default when
	// no row exists yet. It never reports absence as an error.
	Get(ctx context.Context, studentID, postingID uuid.UUID) (StatusOverlay, error)
	// Set upserts the overlay row. Setting applied=true stamps applied_on;
	// reverting applied leaves the stamp in place.
	Set(ctx context.Context, studentID, postingID uuid.UUID, field StatusField, value bool) error
}

type PostgresStatusRepository struct {
	db  database.DB
	now func() time.Time
}

func NewPostgresStatusRepository(db database.DB) *PostgresStatusRepository {
	return &PostgresStatusRepository{db: db, now: time.Now}
}

func (r *PostgresStatusRepository) Get(ctx context.Context, studentID, postingID uuid.UUID) (StatusOverlay, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, student_id, posting_id, interested, applied, skip, applied_on, created_at
		 FROM status_overlay WHERE student_id = $1 AND posting_id = $2`,
		studentID, postingID)

	var o StatusOverlay
	err := row.Scan(&o.ID, &o.StudentID, &o.PostingID, &o.Interested, &o.Applied, &o.Skip, &o.AppliedOn, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return defaultOverlay(studentID, postingID), nil
		}
		return StatusOverlay{}, err
	}
	return o, nil
}

// defaultOverlay is the documented "no opinion yet" state: a student who
// never touched a posting holds all-false flags for it.
func defaultOverlay(studentID, postingID uuid.UUID) StatusOverlay {
	return StatusOverlay{StudentID: studentID, PostingID: postingID}
}

func (r *PostgresStatusRepository) Set(ctx context.Context, studentID, postingID uuid.UUID, field StatusField, value bool) error {
	now := r.now().UTC()

	var query string
	args := []any{uuid.New(), studentID, postingID, value, now}
	switch field {
	case FieldInterested:
		query = `INSERT INTO status_overlay (id, student_id, posting_id, interested, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (student_id, posting_id) DO UPDATE SET interested = EXCLUDED.interested`
	case FieldSkip:
		query = `INSERT INTO status_overlay (id, student_id, posting_id, skip, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (student_id, posting_id) DO UPDATE SET skip = EXCLUDED.skip`
	case FieldApplied:
		if value {
			query = `INSERT INTO status_overlay (id, student_id, posting_id, applied, applied_on, created_at)
				 VALUES ($1, $2, $3, TRUE, $4, $5)
				 ON CONFLICT (student_id, posting_id) DO UPDATE SET applied = TRUE, applied_on = EXCLUDED.applied_on`
			args = []any{uuid.New(), studentID, postingID, now, now}
		} else {
			// applied_on stays stamped on revert; it records the most
			// recent transition to true.
			query = `INSERT INTO status_overlay (id, student_id, posting_id, applied, created_at)
				 VALUES ($1, $2, $3, FALSE, $4)
				 ON CONFLICT (student_id, posting_id) DO UPDATE SET applied = FALSE`
			args = []any{uuid.New(), studentID, postingID, now}
		}
	default:
		return ErrInvalidField
	}

	_, err := r.db.Exec(ctx, query, args...)
	return err
}
