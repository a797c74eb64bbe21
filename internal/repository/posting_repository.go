package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"placement-watch/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// listPageSize caps every per-student listing.
const listPageSize = 20

// nearDeadlineHorizonDays bounds the "near deadline" window:
// end_date < today + horizon.
const nearDeadlineHorizonDays = 2

type PostingRepository interface {
	ExistsByUID(ctx context.Context, externalUID string) (bool, error)
	Insert(ctx context.Context, in NewPosting) (Posting, error)
	GetByID(ctx context.Context, id uuid.UUID) (Posting, error)
	// ListForStudent returns postings filtered by the student's overlay,
	// newest posted first, capped at the page size.
	ListForStudent(ctx context.Context, studentID uuid.UUID, filter StatusFilter) ([]Posting, error)
	// ListActive returns postings the student has neither applied to nor
	// skipped (a missing overlay row counts as neither) whose end_date has
	// not passed. With nearDeadline, only postings ending within the
	// horizon are returned.
	ListActive(ctx context.Context, studentID uuid.UUID, nearDeadline bool) ([]Posting, error)
}

type PostgresPostingRepository struct {
	db  database.DB
	now func() time.Time
}

func NewPostgresPostingRepository(db database.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db, now: time.Now}
}

func (r *PostgresPostingRepository) ExistsByUID(ctx context.Context, externalUID string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posting WHERE external_uid = $1)`, externalUID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresPostingRepository) Insert(ctx context.Context, in NewPosting) (Posting, error) {
	p := Posting{
		ID:          uuid.New(),
		ExternalUID: in.ExternalUID,
		Title:       in.Title,
		EndDate:     in.EndDate,
		PostedDate:  in.PostedDate,
		CreatedAt:   r.now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO posting (id, external_uid, title, end_date, posted_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.ExternalUID, p.Title, p.EndDate, p.PostedDate, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Posting{}, ErrDuplicatePosting
		}
		return Posting{}, err
	}
	return p, nil
}

func (r *PostgresPostingRepository) GetByID(ctx context.Context, id uuid.UUID) (Posting, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, external_uid, title, end_date, posted_date, created_at
		 FROM posting WHERE id = $1`, id)
	return scanPosting(row)
}

func (r *PostgresPostingRepository) ListForStudent(ctx context.Context, studentID uuid.UUID, filter StatusFilter) ([]Posting, error) {
	const cols = `p.id, p.external_uid, p.title, p.end_date, p.posted_date, p.created_at`
	const overlayJoin = ` JOIN status_overlay s ON s.posting_id = p.id AND s.student_id = $1`

	var query string
	var args []any
	switch filter {
	case FilterAll, "":
		// The unfiltered listing does not touch the overlay.
		query = `SELECT ` + cols + ` FROM posting p ORDER BY p.posted_date DESC LIMIT $1`
		args = []any{listPageSize}
	case FilterInterested:
		query = `SELECT ` + cols + ` FROM posting p` + overlayJoin +
			` WHERE s.interested ORDER BY p.posted_date DESC LIMIT $2`
		args = []any{studentID, listPageSize}
	case FilterApplied:
		query = `SELECT ` + cols + ` FROM posting p` + overlayJoin +
			` WHERE s.applied ORDER BY p.posted_date DESC LIMIT $2`
		args = []any{studentID, listPageSize}
	case FilterSkipped:
		query = `SELECT ` + cols + ` FROM posting p` + overlayJoin +
			` WHERE s.skip ORDER BY p.posted_date DESC LIMIT $2`
		args = []any{studentID, listPageSize}
	default:
		return nil, ErrInvalidField
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostings(rows)
}

func (r *PostgresPostingRepository) ListActive(ctx context.Context, studentID uuid.UUID, nearDeadline bool) ([]Posting, error) {
	today := truncateToDate(r.now())

	query := `SELECT p.id, p.external_uid, p.title, p.end_date, p.posted_date, p.created_at
		 FROM posting p
		 LEFT JOIN status_overlay s ON s.posting_id = p.id AND s.student_id = $1
		 WHERE COALESCE(s.applied, FALSE) = FALSE
		   AND COALESCE(s.skip, FALSE) = FALSE
		   AND p.end_date IS NOT NULL AND p.end_date >= $2`
	args := []any{studentID, today}
	if nearDeadline {
		query += ` AND p.end_date < $3`
		args = append(args, today.AddDate(0, 0, nearDeadlineHorizonDays))
	}
	query += ` ORDER BY p.posted_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostings(rows)
}

type postingRow interface {
	Scan(dest ...any) error
}

func scanPosting(row postingRow) (Posting, error) {
	var p Posting
	if err := row.Scan(&p.ID, &p.ExternalUID, &p.Title, &p.EndDate, &p.PostedDate, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return Posting{}, ErrPostingNotFound
		}
		return Posting{}, err
	}
	return p, nil
}

func collectPostings(rows database.Rows) ([]Posting, error) {
	out := make([]Posting, 0)
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.ExternalUID, &p.Title, &p.EndDate, &p.PostedDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
