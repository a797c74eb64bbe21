package routes

import (
	"placement-watch/internal/delivery/http/handler"
	"placement-watch/internal/notify"
	"placement-watch/internal/usecase"
	"placement-watch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	students *handler.StudentHandler
	postings *handler.PostingHandler
	scrape   *handler.ScrapeHandler
	digests  *ws.Handler
}

func NewRegistry(catalog *usecase.CatalogUsecase, svc *notify.Service, wsHandler *ws.Handler) *Registry {
	return &Registry{
		students: handler.NewStudentHandler(catalog),
		postings: handler.NewPostingHandler(catalog),
		scrape:   handler.NewScrapeHandler(svc),
		digests:  wsHandler,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	v1 := app.Group("/api/v1")

	v1.Post("/students", r.students.Register)
	v1.Get("/students/:chat_id", r.students.Get)
	v1.Delete("/students/:chat_id", r.students.Unregister)
	v1.Put("/students/:chat_id/notify", r.students.SetNotify)

	v1.Get("/students/:chat_id/postings", r.postings.List)
	v1.Get("/students/:chat_id/postings/active", r.postings.ListActive)
	v1.Get("/students/:chat_id/postings/:posting_id", r.postings.Detail)
	v1.Put("/students/:chat_id/postings/:posting_id/status", r.postings.SetStatus)

	v1.Post("/students/:chat_id/digests/deadline", r.scrape.DeadlineDigest)
	v1.Post("/scrape", r.scrape.Trigger)

	if r.digests != nil {
		app.Get("/ws/digests", r.digests.HandleDigestsWS)
	}
}
