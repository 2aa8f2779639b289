package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/resfetch/resfetch/internal/fetch"
	"github.com/resfetch/resfetch/internal/hashid"
	"github.com/resfetch/resfetch/internal/resource"
	"github.com/resfetch/resfetch/internal/urltable"
)

type handler struct {
	resources Resources
	logger    *logrus.Logger
}

type fetchFunc func(ctx context.Context) (string, error)

func (h *handler) requireByName(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("*"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name_required"})
	}
	return h.serve(c, "name", name, func(ctx context.Context) (string, error) {
		return h.resources.Require(ctx, name, "")
	})
}

func (h *handler) requireByHash(c fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id_required"})
	}
	return h.serve(c, "hash", id, func(ctx context.Context) (string, error) {
		return h.resources.RequireFromHashURL(ctx, id, "")
	})
}

func (h *handler) fileFromURL(c fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("u"))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url_required"})
	}
	return h.serve(c, "url", raw, func(ctx context.Context) (string, error) {
		return h.resources.FileFromURL(ctx, raw)
	})
}

// serve 执行取资源并把本地文件流式返回；失败时映射为 JSON 错误码。
func (h *handler) serve(c fiber.Ctx, kind, ref string, fn fetchFunc) error {
	started := time.Now()
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := fn(ctx)
	fields := logrus.Fields{
		"action":        "serve_resource",
		"resource_kind": kind,
		"resource_ref":  ref,
		"request_id":    RequestID(c),
		"elapsed_ms":    time.Since(started).Milliseconds(),
	}
	if err != nil {
		status, code := classifyError(err)
		fields["status"] = status
		h.logger.WithFields(fields).WithError(err).Warn("resource_failed")
		return c.Status(status).JSON(fiber.Map{"error": code})
	}

	fields["status"] = fiber.StatusOK
	fields["path"] = path
	h.logger.WithFields(fields).Info("resource_served")

	c.Set("X-Resfetch-Path", path)
	return c.SendFile(path)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, hashid.ErrInvalid):
		return fiber.StatusBadRequest, "invalid_hash_url"
	case errors.Is(err, resource.ErrInvalidURL):
		return fiber.StatusBadRequest, "invalid_url"
	case errors.Is(err, fetch.ErrDestinationIsDir):
		return fiber.StatusConflict, "destination_conflict"
	case errors.Is(err, fetch.ErrCommit):
		return fiber.StatusInternalServerError, "cache_write_failed"
	case errors.Is(err, urltable.ErrNotResolved):
		return fiber.StatusNotFound, "resource_not_found"
	case errors.Is(err, fetch.ErrDownload), errors.Is(err, fetch.ErrPostcondition):
		return fiber.StatusBadGateway, "download_failed"
	default:
		return fiber.StatusInternalServerError, "fetch_failed"
	}
}
