package app

import (
	"fmt"
	"log"
	"strings"

	"placement-watch/internal/delivery/http/middleware"
	"placement-watch/internal/delivery/http/routes"
	"placement-watch/internal/pkg/response"
	"placement-watch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func New(c *Container, logger *log.Logger) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	errMw := middleware.NewErrorMiddleware()
	f.Use(errMw.Middleware())
	f.Use(middleware.NewAccessLogMiddleware(logger).Middleware())

	f.Get("/health", func(ctx fiber.Ctx) error {
		return response.Success(ctx, fiber.StatusOK, response.MessageOK, nil)
	})

	registry := routes.NewRegistry(c.Catalog, c.Notify, ws.NewHandler(c.Hub, logger))
	registry.Register(f)

	return &App{Fiber: f}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
