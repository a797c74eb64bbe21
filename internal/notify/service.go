// Package notify holds the trigger entry points: the guarded full scrape,
// the active-jobs digest and the near-deadline digest.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"placement-watch/internal/repository"
)

// ErrScrapeInProgress is reported to on-demand callers when the guard is
// held. Periodic triggers just skip the tick.
var ErrScrapeInProgress = errors.New("a full scrape is already running")

const (
	textScrapeStarted  = "Started the scraper to get the latest postings."
	textNewPostings    = "New postings"
	textNoNewPostings  = "No new postings."
	textActivePostings = "Active postings you have not applied to."
	textNearDeadline   = "Pending postings nearing their end date."
	textNothingPending = "No postings nearing their end date."
)

// Ingestor is satisfied by ingest.Pipeline.
type Ingestor interface {
	Run(ctx context.Context) ([]repository.Posting, error)
}

type Service struct {
	ingestor  Ingestor
	students  repository.StudentRepository
	postings  repository.PostingRepository
	deliverer Deliverer
	logger    *log.Logger

	// Audience for scrape notices and new-posting digests.
	operatorChatID int64

	// Single-slot re-entrancy guard: acquire-or-reject, never a queue.
	scrapeRunning atomic.Bool
}

func NewService(ingestor Ingestor, students repository.StudentRepository, postings repository.PostingRepository, deliverer Deliverer, operatorChatID int64, logger *log.Logger) *Service {
	return &Service{
		ingestor:       ingestor,
		students:       students,
		postings:       postings,
		deliverer:      deliverer,
		operatorChatID: operatorChatID,
		logger:         logger,
	}
}

// ScrapeRunning reports whether a full scrape currently holds the guard.
func (s *Service) ScrapeRunning() bool {
	return s.scrapeRunning.Load()
}

// RunFullScrape runs the ingestion pipeline behind the re-entrancy guard
// and sends the new-postings digest to the operator. onDemand controls how
// a held guard and an empty result are reported.
func (s *Service) RunFullScrape(ctx context.Context, onDemand bool) error {
	if !s.scrapeRunning.CompareAndSwap(false, true) {
		if onDemand {
			return ErrScrapeInProgress
		}
		if s.logger != nil {
			s.logger.Printf("[Notify] full scrape skipped, previous run still in flight")
		}
		return nil
	}
	// The guard must drop on every exit path, including failures below.
	defer s.scrapeRunning.Store(false)

	s.tellOperator(ctx, textScrapeStarted, nil)

	newPostings, err := s.ingestor.Run(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[Notify] full scrape failed | error=%v", err)
		}
		s.tellOperator(ctx, fmt.Sprintf("Scrape failed: %v", err), nil)
		return err
	}

	if len(newPostings) > 0 {
		s.tellOperator(ctx, textNewPostings, newPostings)
	} else if onDemand {
		s.tellOperator(ctx, textNoNewPostings, nil)
	}
	return nil
}

// SendActiveDigests sends each notify-enabled student their current active
// postings. Empty results send nothing; this runs on a frequent cadence
// and must not spam. One student's failure never stops the loop.
func (s *Service) SendActiveDigests(ctx context.Context) error {
	students, err := s.students.ListNotifyEnabled(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, st := range students {
		postings, err := s.postings.ListActive(ctx, st.ID, false)
		if err != nil {
			errs = append(errs, s.studentErr(st.ChatID, "active list", err))
			continue
		}
		if len(postings) == 0 {
			continue
		}
		d := Digest{ChatID: st.ChatID, Text: textActivePostings, Postings: postings}
		if err := s.deliverer.Deliver(ctx, d); err != nil {
			errs = append(errs, s.studentErr(st.ChatID, "deliver", err))
		}
	}
	return errors.Join(errs...)
}

// SendDeadlineDigests is the scheduled near-deadline pass over all
// notify-enabled students. Empty results send nothing.
func (s *Service) SendDeadlineDigests(ctx context.Context) error {
	students, err := s.students.ListNotifyEnabled(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, st := range students {
		if err := s.sendDeadlineDigest(ctx, st, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendDeadlineDigestFor is the on-demand variant for a single student. An
// empty result gets an explicit "nothing pending" message.
func (s *Service) SendDeadlineDigestFor(ctx context.Context, chatID int64) error {
	st, err := s.students.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	return s.sendDeadlineDigest(ctx, st, true)
}

func (s *Service) sendDeadlineDigest(ctx context.Context, st repository.Student, onDemand bool) error {
	postings, err := s.postings.ListActive(ctx, st.ID, true)
	if err != nil {
		return s.studentErr(st.ChatID, "deadline list", err)
	}

	if len(postings) == 0 {
		if !onDemand {
			return nil
		}
		return s.deliverer.Deliver(ctx, Digest{ChatID: st.ChatID, Text: textNothingPending})
	}

	d := Digest{ChatID: st.ChatID, Text: textNearDeadline, Postings: postings}
	if err := s.deliverer.Deliver(ctx, d); err != nil {
		return s.studentErr(st.ChatID, "deliver", err)
	}
	return nil
}

func (s *Service) tellOperator(ctx context.Context, text string, postings []repository.Posting) {
	if s.operatorChatID == 0 || s.deliverer == nil {
		return
	}
	d := Digest{ChatID: s.operatorChatID, Text: text, Postings: postings}
	if err := s.deliverer.Deliver(ctx, d); err != nil && s.logger != nil {
		s.logger.Printf("[Notify] operator notice failed | error=%v", err)
	}
}

func (s *Service) studentErr(chatID int64, op string, err error) error {
	if s.logger != nil {
		s.logger.Printf("[Notify] %s failed | chat_id=%d error=%v", op, chatID, err)
	}
	return fmt.Errorf("%s chat_id=%d: %w", op, chatID, err)
}
