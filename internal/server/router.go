package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Resources describes the component that turns names, hash identifiers and
// URLs into local files. It allows injecting fakes during tests.
type Resources interface {
	Require(ctx context.Context, name, destination string) (string, error)
	RequireFromHashURL(ctx context.Context, hashURL, destination string) (string, error)
	FileFromURL(ctx context.Context, url string) (string, error)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Resources  Resources
	ListenPort int
}

const contextKeyRequestID = "_resfetch_request_id"

// NewApp builds a Fiber application with request-id middleware and the
// resource routes.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Resources == nil {
		return nil, errors.New("resources are required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		UnescapePath:  true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	h := &handler{resources: opts.Resources, logger: opts.Logger}
	app.Get("/resources/*", h.requireByName)
	app.Get("/hash", h.requireByHash)
	app.Get("/url", h.fileFromURL)

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID，并写回响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
