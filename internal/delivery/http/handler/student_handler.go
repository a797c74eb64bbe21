package handler

import (
	"strconv"
	"strings"

	"placement-watch/internal/delivery/http/dto"
	"placement-watch/internal/pkg/response"
	"placement-watch/internal/repository"
	"placement-watch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type StudentHandler struct {
	uc *usecase.CatalogUsecase
}

func NewStudentHandler(uc *usecase.CatalogUsecase) *StudentHandler {
	return &StudentHandler{uc: uc}
}

type registerRequest struct {
	ChatID      int64  `json:"chat_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func (h *StudentHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.ChatID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "chat_id is required")
	}

	st, err := h.uc.Register(c.Context(), req.ChatID, req.Username, req.DisplayName)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toStudentResponse(st))
}

func (h *StudentHandler) Unregister(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Unregister(c.Context(), chatID); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

type notifyRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *StudentHandler) SetNotify(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	var req notifyRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := h.uc.SetNotify(c.Context(), chatID, req.Enabled); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *StudentHandler) Get(c fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return err
	}
	st, err := h.uc.Student(c.Context(), chatID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toStudentResponse(st))
}

func parseChatID(c fiber.Ctx) (int64, error) {
	raw := strings.TrimSpace(c.Params("chat_id"))
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chatID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid chat_id")
	}
	return chatID, nil
}

func toStudentResponse(st repository.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:            st.ID.String(),
		ChatID:        st.ChatID,
		Username:      st.Username,
		DisplayName:   st.DisplayName,
		Registered:    st.Registered,
		NotifyEnabled: st.NotifyEnabled,
	}
}
