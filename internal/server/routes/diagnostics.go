package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/resfetch/resfetch/internal/cache"
	"github.com/resfetch/resfetch/internal/resource"
	"github.com/resfetch/resfetch/internal/version"
)

// RegisterDiagnosticRoutes 暴露 /-/resources 与 /-/version 诊断接口，供运维查看 URL 表与缓存状态。
func RegisterDiagnosticRoutes(app *fiber.App, svc *resource.Service) {
	if app == nil || svc == nil {
		return
	}

	app.Get("/-/version", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": version.Full()})
	})

	app.Get("/-/resources", func(c fiber.Ctx) error {
		table := svc.Table()
		files, err := svc.CacheDir().Entries()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_scan_failed"})
		}
		var cacheBytes int64
		for _, f := range files {
			cacheBytes += f.SizeBytes
		}
		return c.JSON(fiber.Map{
			"url_table":   table.Path(),
			"cache_dir":   svc.CacheDir().Base(),
			"hash_count":  table.HashCount(),
			"resources":   encodeResources(svc),
			"entry_count": table.Len(),
			"cache_files": len(files),
			"cache_bytes": cacheBytes,
		})
	})
}

type resourcePayload struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Cached    bool   `json:"cached"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

func encodeResources(svc *resource.Service) []resourcePayload {
	table := svc.Table()
	names := table.Names()
	if len(names) == 0 {
		return nil
	}
	result := make([]resourcePayload, 0, len(names))
	for _, name := range names {
		url, _ := table.Lookup(name)
		item := resourcePayload{Name: name, URL: url}
		if path, err := svc.CacheDir().Path(name); err == nil {
			if entry, err := cache.Stat(path); err == nil {
				item.Cached = true
				item.SizeBytes = entry.SizeBytes
			}
		}
		result = append(result, item)
	}
	return result
}
