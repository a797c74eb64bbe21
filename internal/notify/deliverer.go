package notify

import (
	"context"
	"errors"
	"log"

	"placement-watch/internal/repository"
)

// Digest is a batched notification for one recipient. The core builds
// digests; transport is somebody else's problem.
type Digest struct {
	ChatID   int64
	Text     string
	Postings []repository.Posting
}

type Deliverer interface {
	Deliver(ctx context.Context, d Digest) error
}

// LogDeliverer writes digests to the process log. It is the default sink
// and a reasonable fallback while no real channel is wired up.
type LogDeliverer struct {
	Logger *log.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, dg Digest) error {
	if d.Logger == nil {
		return nil
	}
	d.Logger.Printf("[Digest] chat_id=%d postings=%d | %s", dg.ChatID, len(dg.Postings), dg.Text)
	for _, p := range dg.Postings {
		end := "-"
		if p.EndDate != nil {
			end = p.EndDate.Format("2006-01-02")
		}
		d.Logger.Printf("[Digest]   %s | end=%s posted=%s", p.Title, end, p.PostedDate.Format("2006-01-02"))
	}
	return nil
}

// Fanout delivers to every configured sink and reports every failure.
type Fanout []Deliverer

func (f Fanout) Deliver(ctx context.Context, d Digest) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Deliver(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
