package handler

import (
	"strings"
	"time"

	"placement-watch/internal/delivery/http/dto"
	"placement-watch/internal/pkg/response"
	"placement-watch/internal/repository"
	"placement-watch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type PostingHandler struct {
	uc *usecase.CatalogUsecase
}

func NewPostingHandler(uc *usecase.CatalogUsecase) *PostingHandler {
	return &PostingHandler{uc: uc}
}

func (h *PostingHandler) List(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	filter, err := repository.ParseStatusFilter(strings.TrimSpace(c.Query("filter")))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid filter")
	}

	postings, err := h.uc.ListPostings(c.Context(), chatID, filter)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toPostingResponses(postings))
}

func (h *PostingHandler) ListActive(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	nearDeadline := strings.EqualFold(c.Query("near_deadline"), "true")

	postings, err := h.uc.ListActive(c.Context(), chatID, nearDeadline)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toPostingResponses(postings))
}

func (h *PostingHandler) Detail(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	postingID, err := uuid.Parse(c.Params("posting_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid posting_id")
	}

	p, o, err := h.uc.PostingDetail(c.Context(), chatID, postingID)
	if err != nil {
		return err
	}

	out := dto.PostingDetailResponse{
		Posting: toPostingResponse(p),
		Status: dto.StatusResponse{
			Interested: o.Interested,
			Applied:    o.Applied,
			Skip:       o.Skip,
		},
	}
	if o.AppliedOn != nil {
		out.Status.AppliedOn = o.AppliedOn.UTC().Format(time.RFC3339)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

type statusRequest struct {
	Field string `json:"field"`
	Value bool   `json:"value"`
}

func (h *PostingHandler) SetStatus(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	postingID, err := uuid.Parse(c.Params("posting_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid posting_id")
	}
	var req statusRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	field, err := repository.ParseStatusField(strings.TrimSpace(req.Field))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "field must be interested, applied or skip")
	}

	if err := h.uc.SetStatus(c.Context(), chatID, postingID, field, req.Value); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func toPostingResponses(postings []repository.Posting) []dto.PostingResponse {
	out := make([]dto.PostingResponse, 0, len(postings))
	for _, p := range postings {
		out = append(out, toPostingResponse(p))
	}
	return out
}

func toPostingResponse(p repository.Posting) dto.PostingResponse {
	out := dto.PostingResponse{
		ID:          p.ID.String(),
		ExternalUID: p.ExternalUID,
		Title:       p.Title,
		PostedDate:  p.PostedDate.Format("2006-01-02"),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.EndDate != nil {
		out.EndDate = p.EndDate.Format("2006-01-02")
	}
	return out
}
