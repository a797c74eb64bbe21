package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement-watch/internal/app"
	"placement-watch/internal/config"
	appcron "placement-watch/internal/cron"
	"placement-watch/internal/database/migration"
)

func main() {
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

	go c.Hub.Run()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	runner := appcron.NewRunner(logger)
	jobs := []appcron.Job{
		appcron.FullScrapeJob{Service: c.Notify, Expr: cfg.Scheduler.FullScrapeSchedule},
		appcron.ActiveDigestJob{Service: c.Notify, Expr: cfg.Scheduler.ActiveDigestSchedule},
	}
	for _, expr := range cfg.Scheduler.DeadlineDigestTimes {
		jobs = append(jobs, appcron.DeadlineDigestJob{Service: c.Notify, Expr: expr})
	}
	for _, j := range jobs {
		if err := runner.Add(rootCtx, j, 30*time.Minute); err != nil {
			log.Fatalf("bad schedule for %s: %v", j.Name(), err)
		}
	}
	runner.Start()
	defer runner.Stop()

	srv := app.New(c, logger)

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP port: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case <-sigCh:
		rootCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
