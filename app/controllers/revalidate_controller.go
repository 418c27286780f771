package controllers

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/amirulizwan/KedaiKit/internal/pkg/cache"
	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// CacheInvalidator is the slice of the cache layer the revalidation endpoint
// uses.
type CacheInvalidator interface {
	Delete(key ...string) error
	DeleteByPattern(pattern string) error
}

// RevalidateController drops cached storefront documents so the next request
// re-renders from the database. The hosting provider calls it after deploys;
// it is also the callback target of the deploy trigger.
type RevalidateController struct {
	cache CacheInvalidator
}

func NewRevalidateController(cache CacheInvalidator) *RevalidateController {
	return &RevalidateController{cache: cache}
}

type revalidateRequest struct {
	Slug string `json:"slug"`
	Path string `json:"path"`
	All  bool   `json:"all"`
}

func (ctl *RevalidateController) HandleRevalidate(c *fiber.Ctx) error {
	secret := env.GetEnv("REVALIDATE_SECRET", "")
	given := c.Get("x-revalidate-secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
		return jsonError(c, fiber.StatusUnauthorized, "Secret tidak sah")
	}

	var req revalidateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Permintaan tidak sah")
	}

	switch {
	case req.All:
		if err := ctl.cache.DeleteByPattern(cache.StoreKeyPattern()); err != nil {
			log.Printf("revalidate all failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "Revalidasi gagal")
		}
		return c.JSON(fiber.Map{"success": true, "revalidated": "all"})

	case req.Slug != "":
		if err := ctl.cache.Delete(cache.StoreKey(req.Slug)); err != nil {
			log.Printf("revalidate %s failed: %v", req.Slug, err)
			return jsonError(c, fiber.StatusInternalServerError, "Revalidasi gagal")
		}
		return c.JSON(fiber.Map{"success": true, "revalidated": req.Slug})

	case req.Path != "":
		// Paths look like "/kedai-baju-mira"; the slug is the first segment.
		slug := strings.TrimPrefix(req.Path, "/")
		if i := strings.IndexByte(slug, '/'); i >= 0 {
			slug = slug[:i]
		}
		if slug == "" {
			return jsonError(c, fiber.StatusBadRequest, "Path tidak sah")
		}
		if err := ctl.cache.Delete(cache.StoreKey(slug)); err != nil {
			log.Printf("revalidate path %s failed: %v", req.Path, err)
			return jsonError(c, fiber.StatusInternalServerError, "Revalidasi gagal")
		}
		return c.JSON(fiber.Map{"success": true, "revalidated": slug})

	default:
		return jsonError(c, fiber.StatusBadRequest, "slug, path atau all diperlukan")
	}
}
