package app

import (
	"context"
	"log"
	"time"

	"placement-watch/internal/cache"
	"placement-watch/internal/config"
	"placement-watch/internal/database"
	dbpostgres "placement-watch/internal/database/postgres"
	"placement-watch/internal/ingest"
	"placement-watch/internal/notify"
	"placement-watch/internal/repository"
	"placement-watch/internal/scraper"
	"placement-watch/internal/usecase"
	"placement-watch/internal/ws"
)

// Container wires the object graph: store, cache, scrape session,
// pipeline, notification service and the ws hub.
type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub

	Postings repository.PostingRepository
	Students repository.StudentRepository
	Statuses repository.StatusRepository

	Pipeline *ingest.Pipeline
	Notify   *notify.Service
	Catalog  *usecase.CatalogUsecase
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, DB: db}
	c.Cache = cache.NewRedis(cfg.Redis, logger)
	c.Hub = ws.NewHub(logger)

	c.Postings = repository.NewPostgresPostingRepository(db)
	c.Students = repository.NewPostgresStudentRepository(db)
	c.Statuses = repository.NewPostgresStatusRepository(db)

	session := scraper.NewSessionClient(cfg.Portal, logger)
	c.Pipeline = ingest.NewPipeline(session, c.Postings, logger)

	deliverer := notify.Fanout{
		notify.LogDeliverer{Logger: logger},
		ws.NewDigestDeliverer(c.Hub),
	}
	c.Notify = notify.NewService(c.Pipeline, c.Students, c.Postings, deliverer, cfg.App.OperatorChatID, logger)
	c.Catalog = usecase.NewCatalogUsecase(c.Postings, c.Students, c.Statuses, c.Cache, logger)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
