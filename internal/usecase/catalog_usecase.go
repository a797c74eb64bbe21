// Package usecase sits between the HTTP surface and the catalog store.
package usecase

import (
	"context"
	"log"

	"placement-watch/internal/cache"
	"placement-watch/internal/repository"

	"github.com/google/uuid"
)

// CatalogUsecase serves the command/registration surface: student
// lifecycle, per-student posting views and status writes. Listing reads
// go through the cache; status writes invalidate it.
type CatalogUsecase struct {
	postings repository.PostingRepository
	students repository.StudentRepository
	statuses repository.StatusRepository
	cache    *cache.Redis
	logger   *log.Logger
}

func NewCatalogUsecase(
	postings repository.PostingRepository,
	students repository.StudentRepository,
	statuses repository.StatusRepository,
	c *cache.Redis,
	logger *log.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{postings: postings, students: students, statuses: statuses, cache: c, logger: logger}
}

// Register creates the student on first contact and flips the registered
// flag. Repeat calls are idempotent.
func (u *CatalogUsecase) Register(ctx context.Context, chatID int64, username, displayName string) (repository.Student, error) {
	st, err := u.students.Upsert(ctx, chatID, username, displayName)
	if err != nil {
		return repository.Student{}, err
	}
	if !st.Registered {
		if err := u.students.SetFlag(ctx, chatID, repository.FlagRegistered, true); err != nil {
			return repository.Student{}, err
		}
		st.Registered = true
	}
	return st, nil
}

// Unregister only flips the flag; the student row stays.
func (u *CatalogUsecase) Unregister(ctx context.Context, chatID int64) error {
	return u.students.SetFlag(ctx, chatID, repository.FlagRegistered, false)
}

func (u *CatalogUsecase) SetNotify(ctx context.Context, chatID int64, enabled bool) error {
	return u.students.SetFlag(ctx, chatID, repository.FlagNotifyEnabled, enabled)
}

func (u *CatalogUsecase) Student(ctx context.Context, chatID int64) (repository.Student, error) {
	return u.students.GetByChatID(ctx, chatID)
}

func (u *CatalogUsecase) ListPostings(ctx context.Context, chatID int64, filter repository.StatusFilter) ([]repository.Posting, error) {
	st, err := u.students.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	key := cache.StudentListingKey(chatID, string(filter))
	var cached []repository.Posting
	if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	postings, err := u.postings.ListForStudent(ctx, st.ID, filter)
	if err != nil {
		return nil, err
	}
	if err := u.cache.SetJSON(ctx, key, postings, cache.DefaultTTL); err != nil && u.logger != nil {
		u.logger.Printf("[Catalog] cache set failed | key=%s error=%v", key, err)
	}
	return postings, nil
}

// ListActive bypasses the cache: activation depends on today's date and
// drives notifications, so it always reads the store.
func (u *CatalogUsecase) ListActive(ctx context.Context, chatID int64, nearDeadline bool) ([]repository.Posting, error) {
	st, err := u.students.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return u.postings.ListActive(ctx, st.ID, nearDeadline)
}

func (u *CatalogUsecase) PostingDetail(ctx context.Context, chatID int64, postingID uuid.UUID) (repository.Posting, repository.StatusOverlay, error) {
	st, err := u.students.GetByChatID(ctx, chatID)
	if err != nil {
		return repository.Posting{}, repository.StatusOverlay{}, err
	}
	p, err := u.postings.GetByID(ctx, postingID)
	if err != nil {
		return repository.Posting{}, repository.StatusOverlay{}, err
	}
	o, err := u.statuses.Get(ctx, st.ID, p.ID)
	if err != nil {
		return repository.Posting{}, repository.StatusOverlay{}, err
	}
	return p, o, nil
}

func (u *CatalogUsecase) SetStatus(ctx context.Context, chatID int64, postingID uuid.UUID, field repository.StatusField, value bool) error {
	st, err := u.students.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	p, err := u.postings.GetByID(ctx, postingID)
	if err != nil {
		return err
	}
	if err := u.statuses.Set(ctx, st.ID, p.ID, field, value); err != nil {
		return err
	}
	if err := u.cache.DeleteByPattern(ctx, cache.StudentPattern(chatID)); err != nil && u.logger != nil {
		u.logger.Printf("[Catalog] cache invalidate failed | chat_id=%d error=%v", chatID, err)
	}
	return nil
}
