package controllers

import (
	"errors"
	"log"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OrderController serves the public order status poll used by the thankyou
// page while the customer waits for the webhook to land.
type OrderController struct {
	orders OrderOrchestrator
}

func NewOrderController(orders OrderOrchestrator) *OrderController {
	return &OrderController{orders: orders}
}

// HandleGetOrderStatus returns a minimal public view of one order. The order
// number is customer-facing and unguessable enough for a status poll, so there
// is no auth here; the response deliberately omits contact details.
func (ctl *OrderController) HandleGetOrderStatus(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	o, err := ctl.orders.GetOrderByNumber(c.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Pesanan tidak dijumpai")
		}
		log.Printf("order status lookup failed for %s: %v", orderNumber, err)
		return jsonError(c, fiber.StatusInternalServerError, "Pesanan tidak dapat dimuatkan")
	}

	resp := fiber.Map{
		"success":     true,
		"orderNumber": o.OrderNumber,
		"status":      o.Status,
		"planType":    o.PlanType,
		"storeSlug":   o.StoreSlug,
	}
	if o.Status == models.OrderStatusCompleted {
		resp["storeUrl"] = ctl.orders.StoreURL(o.StoreSlug)
	}
	return c.JSON(resp)
}
