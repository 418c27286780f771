package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/amirulizwan/KedaiKit/internal/pkg/audit"
	"github.com/amirulizwan/KedaiKit/internal/pkg/deploy"
	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminController serves the operator dashboard API. Authentication happens in
// the admin middleware; handlers here assume the caller is trusted.
type AdminController struct {
	orders   OrderOrchestrator
	deployer deploy.Triggerer
}

func NewAdminController(orders OrderOrchestrator, deployer deploy.Triggerer) *AdminController {
	return &AdminController{orders: orders, deployer: deployer}
}

// HandleListOrders returns a paginated order list, optionally filtered by
// status.
func (ctl *AdminController) HandleListOrders(c *fiber.Ctx) error {
	opts := order.ListOptions{
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	orders, total, err := ctl.orders.ListOrders(c.Context(), opts)
	if err != nil {
		log.Printf("admin order list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Senarai pesanan tidak dapat dimuatkan")
	}

	out := make([]fiber.Map, 0, len(orders))
	for i := range orders {
		out = append(out, orderJSON(&orders[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  out,
		"pagination": fiber.Map{
			"total":   total,
			"limit":   opts.Limit,
			"offset":  opts.Offset,
			"hasMore": int64(opts.Offset+len(orders)) < total,
		},
	})
}

type adminOrderAction struct {
	Action  string `json:"action"`
	OrderID string `json:"orderId"`
}

// HandleOrderAction dispatches operator actions against one order.
func (ctl *AdminController) HandleOrderAction(c *fiber.Ctx) error {
	var req adminOrderAction
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Permintaan tidak sah")
	}
	if req.OrderID == "" {
		return jsonError(c, fiber.StatusBadRequest, "orderId diperlukan")
	}

	var err error
	switch req.Action {
	case "retry-deploy":
		err = ctl.orders.RetryDeploy(c.Context(), req.OrderID)
	case "mark-refunded":
		err = ctl.orders.MarkRefunded(c.Context(), req.OrderID)
	default:
		return jsonError(c, fiber.StatusBadRequest, "Tindakan tidak dikenali: "+req.Action)
	}

	switch {
	case err == nil:
	case errors.Is(err, order.ErrRetryNotAllowed),
		errors.Is(err, order.ErrRefundNotAllowed),
		errors.Is(err, order.ErrOrderFulfilled),
		errors.Is(err, order.ErrFulfillmentInProgress):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "Pesanan tidak dijumpai")
	default:
		log.Printf("admin action %s failed for %s: %v", req.Action, req.OrderID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Tindakan gagal")
	}

	o, err := ctl.orders.GetOrderByID(c.Context(), req.OrderID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Pesanan tidak dapat dimuatkan")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   orderJSON(o),
	})
}

type adminDeployRequest struct {
	OrderID    string `json:"orderId"`
	StoreSlug  string `json:"storeSlug"`
	FullDeploy bool   `json:"fullDeploy"`
}

// HandleManualDeploy triggers hosting revalidation outside the order state
// machine: either for one slug, for the slug behind an order, or a full
// rebuild. Order status is untouched.
func (ctl *AdminController) HandleManualDeploy(c *fiber.Ctx) error {
	var req adminDeployRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Permintaan tidak sah")
	}

	if req.FullDeploy {
		if !ctl.deployer.TriggerFullDeploy(c.Context()) {
			return jsonError(c, fiber.StatusBadGateway, "Full deploy gagal")
		}
		audit.Event(audit.EventManualDeploy, map[string]interface{}{"fullDeploy": true})
		return c.JSON(fiber.Map{"success": true, "message": "Full deploy dicetuskan"})
	}

	slug := strings.TrimSpace(req.StoreSlug)
	if slug == "" && req.OrderID != "" {
		o, err := ctl.orders.GetOrderByID(c.Context(), req.OrderID)
		if err != nil {
			return jsonError(c, fiber.StatusNotFound, "Pesanan tidak dijumpai")
		}
		slug = o.StoreSlug
	}
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "storeSlug atau orderId diperlukan")
	}

	if !ctl.deployer.TriggerDeploy(c.Context(), slug) {
		return jsonError(c, fiber.StatusBadGateway, "Deploy gagal untuk "+slug)
	}
	audit.Event(audit.EventManualDeploy, map[string]interface{}{"storeSlug": slug})
	return c.JSON(fiber.Map{"success": true, "slug": slug})
}
