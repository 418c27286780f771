package controllers

import (
	"encoding/json"
	"log"

	"github.com/amirulizwan/KedaiKit/app/repository"
	"github.com/gofiber/fiber/v2"
)

// TemplateController lists the storefront templates the checkout page offers.
type TemplateController struct {
	templates repository.TemplateRepository
}

func NewTemplateController(templates repository.TemplateRepository) *TemplateController {
	return &TemplateController{templates: templates}
}

func (ctl *TemplateController) HandleListTemplates(c *fiber.Ctx) error {
	templates, err := ctl.templates.ListActive()
	if err != nil {
		log.Printf("template list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Templat tidak dapat dimuatkan")
	}

	out := make([]fiber.Map, 0, len(templates))
	for _, t := range templates {
		var theme map[string]interface{}
		if t.ThemeJSON != "" {
			_ = json.Unmarshal([]byte(t.ThemeJSON), &theme)
		}
		out = append(out, fiber.Map{
			"key":         t.Key,
			"title":       t.Title,
			"description": t.Description,
			"thumbnail":   t.ThumbnailURL,
			"theme":       theme,
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"templates": out,
	})
}
