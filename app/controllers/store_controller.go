package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/amirulizwan/KedaiKit/app/repository"
	"github.com/amirulizwan/KedaiKit/internal/pkg/cache"
	"github.com/amirulizwan/KedaiKit/internal/pkg/slugify"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const storeCacheTTL = 5 * time.Minute

// PageCache is the slice of the cache layer the storefront endpoint uses.
// A nil PageCache disables caching.
type PageCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

// StoreController serves the public storefront document the frontend renders.
type StoreController struct {
	stores repository.StoreRepository
	cache  PageCache
}

func NewStoreController(stores repository.StoreRepository, cache PageCache) *StoreController {
	return &StoreController{stores: stores, cache: cache}
}

// HandleGetStore returns the active store and its catalog for one slug,
// served from cache when the document was rendered recently.
func (ctl *StoreController) HandleGetStore(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if !slugify.IsValidSlug(slug) {
		return jsonError(c, fiber.StatusNotFound, "Kedai tidak dijumpai")
	}

	cacheKey := cache.StoreKey(slug)
	if ctl.cache != nil {
		if cached, err := ctl.cache.Get(cacheKey); err == nil && cached != "" {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	store, err := ctl.stores.GetActiveBySlugWithProducts(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Kedai tidak dijumpai")
		}
		log.Printf("store lookup failed for %s: %v", slug, err)
		return jsonError(c, fiber.StatusInternalServerError, "Kedai tidak dapat dimuatkan")
	}

	doc := storeDocument(store)
	if ctl.cache != nil {
		if body, err := json.Marshal(doc); err == nil {
			if err := ctl.cache.Set(cacheKey, string(body), storeCacheTTL); err != nil {
				log.Printf("store cache write failed for %s: %v", slug, err)
			}
		}
	}

	return c.JSON(doc)
}

func storeDocument(store *models.Store) fiber.Map {
	products := make([]fiber.Map, 0, len(store.Products))
	for _, p := range store.Products {
		var images []string
		if p.ImagesJSON != "" {
			_ = json.Unmarshal([]byte(p.ImagesJSON), &images)
		}
		products = append(products, fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"images":      images,
			"sortOrder":   p.SortOrder,
		})
	}

	var theme map[string]interface{}
	if store.ThemeJSON != "" {
		_ = json.Unmarshal([]byte(store.ThemeJSON), &theme)
	}
	if theme == nil {
		theme = map[string]interface{}{}
	}

	return fiber.Map{
		"success": true,
		"store": fiber.Map{
			"slug":        store.Slug,
			"name":        store.Name,
			"whatsapp":    store.Whatsapp,
			"templateKey": store.TemplateKey,
			"isPremium":   store.IsPremium,
			"theme":       theme,
			"products":    products,
		},
	}
}
