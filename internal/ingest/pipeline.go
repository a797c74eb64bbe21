// Package ingest turns one portal session into catalog inserts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"placement-watch/internal/repository"
	"placement-watch/internal/scraper"
)

// PageFetcher is the authenticated session against the portal.
type PageFetcher interface {
	FetchPostingsPage(ctx context.Context) ([]byte, error)
}

type Pipeline struct {
	fetcher  PageFetcher
	postings repository.PostingRepository
	logger   *log.Logger
}

func NewPipeline(fetcher PageFetcher, postings repository.PostingRepository, logger *log.Logger) *Pipeline {
	return &Pipeline{fetcher: fetcher, postings: postings, logger: logger}
}

// Run fetches the listing, parses it and inserts every posting not yet in
// the catalog. It returns only the postings inserted by this run.
//
// Each row's dedup-and-insert is its own atomic unit: a failure partway
// through keeps everything inserted so far. Re-running against an
// unchanged listing inserts nothing, which makes a crashed run safe to
// simply repeat.
func (p *Pipeline) Run(ctx context.Context) ([]repository.Posting, error) {
	if p == nil || p.fetcher == nil || p.postings == nil {
		return nil, errors.New("pipeline not configured")
	}

	markup, err := p.fetcher.FetchPostingsPage(ctx)
	if err != nil {
		return nil, err
	}

	raws, err := scraper.ParsePostings(markup)
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Printf("[Ingest] listing parsed | rows=%d", len(raws))
	}

	inserted := make([]repository.Posting, 0)
	for _, raw := range raws {
		exists, err := p.postings.ExistsByUID(ctx, raw.ExternalUID)
		if err != nil {
			return inserted, fmt.Errorf("dedup check uid=%s: %w", raw.ExternalUID, err)
		}
		if exists {
			continue
		}

		posting, err := p.postings.Insert(ctx, repository.NewPosting{
			ExternalUID: raw.ExternalUID,
			Title:       raw.Title,
			EndDate:     raw.EndDate,
			PostedDate:  raw.PostedDate,
		})
		if err != nil {
			// Lost the race against a concurrent insert of the same uid.
			// The posting is in the catalog either way.
			if errors.Is(err, repository.ErrDuplicatePosting) {
				if p.logger != nil {
					p.logger.Printf("[Ingest] duplicate uid=%s, already ingested", raw.ExternalUID)
				}
				continue
			}
			return inserted, fmt.Errorf("insert uid=%s: %w", raw.ExternalUID, err)
		}
		if p.logger != nil {
			p.logger.Printf("[Ingest] new posting | uid=%s title=%q", posting.ExternalUID, posting.Title)
		}
		inserted = append(inserted, posting)
	}

	return inserted, nil
}
