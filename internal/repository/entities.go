package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPostingNotFound  = errors.New("posting not found")
	ErrDuplicatePosting = errors.New("posting with this external uid already exists")
	ErrStudentNotFound  = errors.New("student not found")
	ErrInvalidField     = errors.New("invalid field")
)

// Posting is one unique opportunity from the portal. Rows are immutable
// after insert; external_uid is the sole dedup key across scrape runs.
type Posting struct {
	ID          uuid.UUID
	ExternalUID string
	Title       string
	EndDate     *time.Time
	PostedDate  time.Time
	CreatedAt   time.Time
}

type NewPosting struct {
	ExternalUID string
	Title       string
	EndDate     *time.Time
	PostedDate  time.Time
}

type Student struct {
	ID            uuid.UUID
	ChatID        int64
	Username      string
	DisplayName   string
	Registered    bool
	NotifyEnabled bool
	CreatedAt     time.Time
}

// StatusOverlay is one student's opinion about one posting. Rows are
// created lazily on the first status write; no row means all flags false.
type StatusOverlay struct {
	ID         uuid.UUID
	StudentID  uuid.UUID
	PostingID  uuid.UUID
	Interested bool
	Applied    bool
	Skip       bool
	AppliedOn  *time.Time
	CreatedAt  time.Time
}

type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterInterested StatusFilter = "interested"
	FilterApplied    StatusFilter = "applied"
	FilterSkipped    StatusFilter = "skipped"
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case FilterAll, "":
		return FilterAll, nil
	case FilterInterested:
		return FilterInterested, nil
	case FilterApplied:
		return FilterApplied, nil
	case FilterSkipped:
		return FilterSkipped, nil
	}
	return "", ErrInvalidField
}

type StatusField string

const (
	FieldInterested StatusField = "interested"
	FieldApplied    StatusField = "applied"
	FieldSkip       StatusField = "skip"
)

func ParseStatusField(s string) (StatusField, error) {
	switch StatusField(s) {
	case FieldInterested, FieldApplied, FieldSkip:
		return StatusField(s), nil
	}
	return "", ErrInvalidField
}

type StudentFlag string

const (
	FlagRegistered    StudentFlag = "registered"
	FlagNotifyEnabled StudentFlag = "notify_enabled"
)
