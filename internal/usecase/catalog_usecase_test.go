package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"placement-watch/internal/repository"

	"github.com/google/uuid"
)

type fakeStudents struct {
	byChatID map[int64]repository.Student
	setFlags []string
}

func (f *fakeStudents) Upsert(ctx context.Context, chatID int64, username, displayName string) (repository.Student, error) {
	st, ok := f.byChatID[chatID]
	if !ok {
		st = repository.Student{ID: uuid.New(), ChatID: chatID}
	}
	st.Username = username
	st.DisplayName = displayName
	f.byChatID[chatID] = st
	return st, nil
}

func (f *fakeStudents) GetByChatID(ctx context.Context, chatID int64) (repository.Student, error) {
	st, ok := f.byChatID[chatID]
	if !ok {
		return repository.Student{}, repository.ErrStudentNotFound
	}
	return st, nil
}

func (f *fakeStudents) SetFlag(ctx context.Context, chatID int64, flag repository.StudentFlag, value bool) error {
	st, ok := f.byChatID[chatID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	switch flag {
	case repository.FlagRegistered:
		st.Registered = value
	case repository.FlagNotifyEnabled:
		st.NotifyEnabled = value
	}
	f.byChatID[chatID] = st
	f.setFlags = append(f.setFlags, string(flag))
	return nil
}

func (f *fakeStudents) ListNotifyEnabled(ctx context.Context) ([]repository.Student, error) {
	return nil, nil
}

type fakePostings struct {
	byID map[uuid.UUID]repository.Posting
}

func (f *fakePostings) ExistsByUID(ctx context.Context, uid string) (bool, error) { return false, nil }

func (f *fakePostings) Insert(ctx context.Context, in repository.NewPosting) (repository.Posting, error) {
	return repository.Posting{}, nil
}

func (f *fakePostings) GetByID(ctx context.Context, id uuid.UUID) (repository.Posting, error) {
	p, ok := f.byID[id]
	if !ok {
		return repository.Posting{}, repository.ErrPostingNotFound
	}
	return p, nil
}

func (f *fakePostings) ListForStudent(ctx context.Context, studentID uuid.UUID, filter repository.StatusFilter) ([]repository.Posting, error) {
	out := make([]repository.Posting, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePostings) ListActive(ctx context.Context, studentID uuid.UUID, nearDeadline bool) ([]repository.Posting, error) {
	return nil, nil
}

type fakeStatuses struct {
	overlays map[[2]uuid.UUID]repository.StatusOverlay
	sets     int
}

func (f *fakeStatuses) Get(ctx context.Context, studentID, postingID uuid.UUID) (repository.StatusOverlay, error) {
	o, ok := f.overlays[[2]uuid.UUID{studentID, postingID}]
	if !ok {
		return repository.StatusOverlay{StudentID: studentID, PostingID: postingID}, nil
	}
	return o, nil
}

func (f *fakeStatuses) Set(ctx context.Context, studentID, postingID uuid.UUID, field repository.StatusField, value bool) error {
	f.sets++
	if f.overlays == nil {
		f.overlays = map[[2]uuid.UUID]repository.StatusOverlay{}
	}
	o, _ := f.Get(ctx, studentID, postingID)
	switch field {
	case repository.FieldInterested:
		o.Interested = value
	case repository.FieldApplied:
		o.Applied = value
	case repository.FieldSkip:
		o.Skip = value
	}
	f.overlays[[2]uuid.UUID{studentID, postingID}] = o
	return nil
}

func newCatalog(students *fakeStudents, postings *fakePostings, statuses *fakeStatuses) *CatalogUsecase {
	// nil cache degrades to a pass-through, same as an unreachable Redis.
	return NewCatalogUsecase(postings, students, statuses, nil, log.New(io.Discard, "", 0))
}

func TestRegisterIsIdempotent(t *testing.T) {
	students := &fakeStudents{byChatID: map[int64]repository.Student{}}
	uc := newCatalog(students, &fakePostings{}, &fakeStatuses{})

	st, err := uc.Register(context.Background(), 100, "alice", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !st.Registered {
		t.Fatal("first Register did not set the flag")
	}
	if len(students.setFlags) != 1 {
		t.Fatalf("flag writes = %v", students.setFlags)
	}

	if _, err := uc.Register(context.Background(), 100, "alice", "Alice"); err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if len(students.setFlags) != 1 {
		t.Fatalf("repeat Register rewrote the flag: %v", students.setFlags)
	}
}

func TestUnregisterKeepsStudent(t *testing.T) {
	students := &fakeStudents{byChatID: map[int64]repository.Student{
		100: {ID: uuid.New(), ChatID: 100, Registered: true},
	}}
	uc := newCatalog(students, &fakePostings{}, &fakeStatuses{})

	if err := uc.Unregister(context.Background(), 100); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	st, err := students.GetByChatID(context.Background(), 100)
	if err != nil {
		t.Fatalf("student row was removed: %v", err)
	}
	if st.Registered {
		t.Fatal("registered flag still set")
	}
}

func TestSetStatusRejectsUnknownPosting(t *testing.T) {
	students := &fakeStudents{byChatID: map[int64]repository.Student{
		100: {ID: uuid.New(), ChatID: 100, Registered: true},
	}}
	statuses := &fakeStatuses{}
	uc := newCatalog(students, &fakePostings{byID: map[uuid.UUID]repository.Posting{}}, statuses)

	err := uc.SetStatus(context.Background(), 100, uuid.New(), repository.FieldInterested, true)
	if !errors.Is(err, repository.ErrPostingNotFound) {
		t.Fatalf("err = %v, want ErrPostingNotFound", err)
	}
	if statuses.sets != 0 {
		t.Fatal("status written despite unknown posting")
	}
}

func TestPostingDetailDefaultOverlay(t *testing.T) {
	studentID := uuid.New()
	postingID := uuid.New()
	students := &fakeStudents{byChatID: map[int64]repository.Student{
		100: {ID: studentID, ChatID: 100, Registered: true},
	}}
	postings := &fakePostings{byID: map[uuid.UUID]repository.Posting{
		postingID: {ID: postingID, ExternalUID: "8842", Title: "Backend Engineer"},
	}}
	uc := newCatalog(students, postings, &fakeStatuses{})

	p, o, err := uc.PostingDetail(context.Background(), 100, postingID)
	if err != nil {
		t.Fatalf("PostingDetail: %v", err)
	}
	if p.ExternalUID != "8842" {
		t.Fatalf("posting = %+v", p)
	}
	if o.Interested || o.Applied || o.Skip || o.AppliedOn != nil {
		t.Fatalf("untouched posting should carry the default overlay, got %+v", o)
	}
}

func TestSetStatusWritesOverlay(t *testing.T) {
	studentID := uuid.New()
	postingID := uuid.New()
	students := &fakeStudents{byChatID: map[int64]repository.Student{
		100: {ID: studentID, ChatID: 100, Registered: true},
	}}
	postings := &fakePostings{byID: map[uuid.UUID]repository.Posting{
		postingID: {ID: postingID, ExternalUID: "8842", Title: "Backend Engineer"},
	}}
	statuses := &fakeStatuses{}
	uc := newCatalog(students, postings, statuses)

	if err := uc.SetStatus(context.Background(), 100, postingID, repository.FieldApplied, true); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if statuses.sets != 1 {
		t.Fatalf("status writes = %d", statuses.sets)
	}
	_, o, err := uc.PostingDetail(context.Background(), 100, postingID)
	if err != nil {
		t.Fatalf("PostingDetail: %v", err)
	}
	if !o.Applied {
		t.Fatal("applied flag not visible after write")
	}
}
