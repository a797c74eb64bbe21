package handler

import (
	"context"

	"placement-watch/internal/notify"
	"placement-watch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type ScrapeHandler struct {
	svc *notify.Service
}

func NewScrapeHandler(svc *notify.Service) *ScrapeHandler {
	return &ScrapeHandler{svc: svc}
}

// Trigger starts an on-demand full scrape in the background. A held guard
// is reported immediately; the run's outcome goes to the operator digest.
func (h *ScrapeHandler) Trigger(c fiber.Ctx) error {
	if h.svc.ScrapeRunning() {
		return notify.ErrScrapeInProgress
	}

	// Detached from the request: the scrape outlives this response.
	go func() {
		_ = h.svc.RunFullScrape(context.Background(), true)
	}()

	return response.Success(c, fiber.StatusAccepted, "scrape started", nil)
}

// DeadlineDigest is the on-demand near-deadline digest for one student.
func (h *ScrapeHandler) DeadlineDigest(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	if err := h.svc.SendDeadlineDigestFor(c.Context(), chatID); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
