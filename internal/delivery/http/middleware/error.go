package middleware

import (
	"errors"
	"log"

	"placement-watch/internal/notify"
	"placement-watch/internal/pkg/response"
	"placement-watch/internal/repository"

	"github.com/gofiber/fiber/v3"
)

type ErrorMiddleware struct{}

func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg := normalizeError(err)
		return response.Error(c, status, msg, nil)
	}
}

// normalizeError maps domain sentinels onto HTTP statuses; anything
// unrecognized is a 500 with the detail kept out of the response.
func normalizeError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrStudentNotFound):
		return fiber.StatusNotFound, "student not found"
	case errors.Is(err, repository.ErrPostingNotFound):
		return fiber.StatusNotFound, "posting not found"
	case errors.Is(err, repository.ErrDuplicatePosting):
		return fiber.StatusConflict, "posting already exists"
	case errors.Is(err, repository.ErrInvalidField):
		return fiber.StatusBadRequest, "invalid field"
	case errors.Is(err, notify.ErrScrapeInProgress):
		return fiber.StatusConflict, "scrape already running"
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.MessageError
		}
		return status, msg
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError
}
