package scraper

import "errors"

var (
	// ErrScrapeFailed covers network, login and fetch failures inside the
	// portal session. The run is aborted; retry happens on the next trigger.
	ErrScrapeFailed = errors.New("portal scrape failed")

	// ErrParseFailed means the listing markup did not match the expected
	// structure. A missing table almost always means the site layout
	// changed, not that there are zero postings, so the whole run fails.
	ErrParseFailed = errors.New("postings page parse failed")
)
