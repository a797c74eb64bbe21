package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"placement-watch/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StudentRepository interface {
	// Upsert creates the student on first contact and refreshes the
	// informational fields on subsequent calls. Flags are untouched.
	Upsert(ctx context.Context, chatID int64, username, displayName string) (Student, error)
	GetByChatID(ctx context.Context, chatID int64) (Student, error)
	SetFlag(ctx context.Context, chatID int64, flag StudentFlag, value bool) error
	ListNotifyEnabled(ctx context.Context) ([]Student, error)
}

type PostgresStudentRepository struct {
	db database.DB
}

func NewPostgresStudentRepository(db database.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

func (r *PostgresStudentRepository) Upsert(ctx context.Context, chatID int64, username, displayName string) (Student, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO student (id, chat_id, username, display_name, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (chat_id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, student.username),
			display_name = EXCLUDED.display_name
		 RETURNING id, chat_id, COALESCE(username, ''), display_name, registered, notify_enabled, created_at`,
		uuid.New(), chatID, nullableText(username), strings.TrimSpace(displayName), time.Now().UTC(),
	)
	return scanStudent(row)
}

func (r *PostgresStudentRepository) GetByChatID(ctx context.Context, chatID int64) (Student, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, chat_id, COALESCE(username, ''), display_name, registered, notify_enabled, created_at
		 FROM student WHERE chat_id = $1`, chatID)
	return scanStudent(row)
}

func (r *PostgresStudentRepository) SetFlag(ctx context.Context, chatID int64, flag StudentFlag, value bool) error {
	var query string
	switch flag {
	case FlagRegistered:
		query = `UPDATE student SET registered = $2 WHERE chat_id = $1`
	case FlagNotifyEnabled:
		query = `UPDATE student SET notify_enabled = $2 WHERE chat_id = $1`
	default:
		return ErrInvalidField
	}
	n, err := r.db.Exec(ctx, query, chatID, value)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *PostgresStudentRepository) ListNotifyEnabled(ctx context.Context) ([]Student, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, chat_id, COALESCE(username, ''), display_name, registered, notify_enabled, created_at
		 FROM student WHERE notify_enabled ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Student, 0)
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.ChatID, &s.Username, &s.DisplayName, &s.Registered, &s.NotifyEnabled, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type studentRow interface {
	Scan(dest ...any) error
}

func scanStudent(row studentRow) (Student, error) {
	var s Student
	if err := row.Scan(&s.ID, &s.ChatID, &s.Username, &s.DisplayName, &s.Registered, &s.NotifyEnabled, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, err
	}
	return s, nil
}

func nullableText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
