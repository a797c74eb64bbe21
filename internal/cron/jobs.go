package cron

import (
	"context"

	"placement-watch/internal/notify"
)

// FullScrapeJob runs the ingestion pipeline on the long cadence. A tick
// that finds the guard held is skipped silently.
type FullScrapeJob struct {
	Service *notify.Service
	Expr    string
}

func (j FullScrapeJob) Name() string     { return "full-scrape" }
func (j FullScrapeJob) Schedule() string { return j.Expr }
func (j FullScrapeJob) Run(ctx context.Context) error {
	return j.Service.RunFullScrape(ctx, false)
}

// ActiveDigestJob fans the active-postings digest out to notify-enabled
// students on the short cadence.
type ActiveDigestJob struct {
	Service *notify.Service
	Expr    string
}

func (j ActiveDigestJob) Name() string     { return "active-digest" }
func (j ActiveDigestJob) Schedule() string { return j.Expr }
func (j ActiveDigestJob) Run(ctx context.Context) error {
	return j.Service.SendActiveDigests(ctx)
}

// DeadlineDigestJob runs the near-deadline pass at one fixed time of day;
// register it once per configured time.
type DeadlineDigestJob struct {
	Service *notify.Service
	Expr    string
}

func (j DeadlineDigestJob) Name() string     { return "deadline-digest" }
func (j DeadlineDigestJob) Schedule() string { return j.Expr }
func (j DeadlineDigestJob) Run(ctx context.Context) error {
	return j.Service.SendDeadlineDigests(ctx)
}
