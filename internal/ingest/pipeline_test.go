package ingest

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"placement-watch/internal/repository"
	"placement-watch/internal/scraper"

	"github.com/google/uuid"
)

type fakeFetcher struct {
	page []byte
	err  error
}

func (f fakeFetcher) FetchPostingsPage(ctx context.Context) ([]byte, error) {
	return f.page, f.err
}

// fakePostingRepo keeps postings in memory keyed by external uid.
type fakePostingRepo struct {
	byUID map[string]repository.Posting

	existsErr error
	insertErr error
}

func newFakePostingRepo() *fakePostingRepo {
	return &fakePostingRepo{byUID: map[string]repository.Posting{}}
}

func (f *fakePostingRepo) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byUID[uid]
	return ok, nil
}

func (f *fakePostingRepo) Insert(ctx context.Context, in repository.NewPosting) (repository.Posting, error) {
	if f.insertErr != nil {
		return repository.Posting{}, f.insertErr
	}
	if _, ok := f.byUID[in.ExternalUID]; ok {
		return repository.Posting{}, repository.ErrDuplicatePosting
	}
	p := repository.Posting{
		ID:          uuid.New(),
		ExternalUID: in.ExternalUID,
		Title:       in.Title,
		EndDate:     in.EndDate,
		PostedDate:  in.PostedDate,
		CreatedAt:   time.Now().UTC(),
	}
	f.byUID[in.ExternalUID] = p
	return p, nil
}

func (f *fakePostingRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Posting, error) {
	for _, p := range f.byUID {
		if p.ID == id {
			return p, nil
		}
	}
	return repository.Posting{}, repository.ErrPostingNotFound
}

func (f *fakePostingRepo) ListForStudent(ctx context.Context, studentID uuid.UUID, filter repository.StatusFilter) ([]repository.Posting, error) {
	return nil, nil
}

func (f *fakePostingRepo) ListActive(ctx context.Context, studentID uuid.UUID, nearDeadline bool) ([]repository.Posting, error) {
	return nil, nil
}

const samplePage = `<table id="job-listings"><tbody>
	<tr><td>Backend Engineer</td><td>15/09/2026</td><td>28/08/2026</td><td><a href="/jobs/view/101">Apply</a></td></tr>
	<tr><td>Data Analyst</td><td>20/09/2026</td><td>27/08/2026</td><td><a href="/jobs/view/102">Apply</a></td></tr>
</tbody></table>`

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestPipelineRunInsertsNewPostings(t *testing.T) {
	repo := newFakePostingRepo()
	p := NewPipeline(fakeFetcher{page: []byte(samplePage)}, repo, discard())

	inserted, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("inserted %d, want 2", len(inserted))
	}
	if _, ok := repo.byUID["101"]; !ok {
		t.Error("uid 101 not stored")
	}
	if _, ok := repo.byUID["102"]; !ok {
		t.Error("uid 102 not stored")
	}
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	repo := newFakePostingRepo()
	p := NewPipeline(fakeFetcher{page: []byte(samplePage)}, repo, discard())

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second run inserted %d, want 0", len(second))
	}
}

func TestPipelineRunSwallowsDuplicateRace(t *testing.T) {
	repo := newFakePostingRepo()
	repo.insertErr = repository.ErrDuplicatePosting
	p := NewPipeline(fakeFetcher{page: []byte(samplePage)}, repo, discard())

	inserted, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("inserted %d, want 0", len(inserted))
	}
}

func TestPipelineRunFetchError(t *testing.T) {
	wantErr := scraper.ErrScrapeFailed
	p := NewPipeline(fakeFetcher{err: wantErr}, newFakePostingRepo(), discard())

	_, err := p.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want ErrScrapeFailed", err)
	}
}

func TestPipelineRunParseError(t *testing.T) {
	p := NewPipeline(fakeFetcher{page: []byte("<html>no table</html>")}, newFakePostingRepo(), discard())

	_, err := p.Run(context.Background())
	if !errors.Is(err, scraper.ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}
}

func TestPipelineRunKeepsEarlierInsertsOnFailure(t *testing.T) {
	repo := newFakePostingRepo()
	p := NewPipeline(fakeFetcher{page: []byte(samplePage)}, repo, discard())

	// Fail the second row's dedup check after the first row landed.
	calls := 0
	inner := repo
	failing := &flakyPostingRepo{fakePostingRepo: inner, failOnCall: 2, calls: &calls}
	p.postings = failing

	inserted, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("want error from second row")
	}
	if len(inserted) != 1 {
		t.Fatalf("inserted %d before failure, want 1", len(inserted))
	}
	if _, ok := inner.byUID["101"]; !ok {
		t.Error("first row should remain stored")
	}
}

type flakyPostingRepo struct {
	*fakePostingRepo
	failOnCall int
	calls      *int
}

func (f *flakyPostingRepo) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	*f.calls++
	if *f.calls == f.failOnCall {
		return false, errors.New("connection reset")
	}
	return f.fakePostingRepo.ExistsByUID(ctx, uid)
}
