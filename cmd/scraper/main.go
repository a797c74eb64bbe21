// One-shot ingestion run: scrape the portal once, print what was new.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"placement-watch/internal/app"
	"placement-watch/internal/config"
	"placement-watch/internal/database/migration"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.Default()

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	r := migration.Runner{Dir: "migrations"}
	err = r.Run(migCtx, c.DB.SQLDB())
	migCancel()
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	newPostings, err := c.Pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	log.Printf("ingestion done | new_postings=%d", len(newPostings))
	for _, p := range newPostings {
		end := "-"
		if p.EndDate != nil {
			end = p.EndDate.Format("2006-01-02")
		}
		log.Printf("  %s | uid=%s end=%s posted=%s", p.Title, p.ExternalUID, end, p.PostedDate.Format("2006-01-02"))
	}
}
