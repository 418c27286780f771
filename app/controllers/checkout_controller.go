package controllers

import (
	"log"

	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/amirulizwan/KedaiKit/internal/pkg/validate"
	"github.com/gofiber/fiber/v2"
)

// CheckoutController handles the public checkout endpoint.
type CheckoutController struct {
	orders OrderOrchestrator
}

func NewCheckoutController(orders OrderOrchestrator) *CheckoutController {
	return &CheckoutController{orders: orders}
}

// HandleCheckout validates the checkout form, creates the order and returns
// the payment URL (or the live store URL for the free plan).
func (ctl *CheckoutController) HandleCheckout(c *fiber.Ctx) error {
	var in validate.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Permintaan tidak sah")
	}

	if fieldErrors := validate.CheckoutInputErrors(&in); len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"errors":  fieldErrors,
		})
	}

	res, err := ctl.orders.CreateOrder(c.Context(), order.CreateOrderInput{
		FullName:    in.FullName,
		Email:       in.Email,
		Whatsapp:    in.Whatsapp,
		StoreName:   in.StoreName,
		TemplateKey: in.TemplateKey,
		PlanType:    in.PlanType,
	})
	if err != nil {
		log.Printf("checkout failed for %s: %v", in.Email, err)
		return jsonError(c, fiber.StatusInternalServerError, "Pesanan tidak dapat diproses. Sila cuba lagi.")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"orderId":     res.OrderID,
		"orderNumber": res.OrderNumber,
		"paymentUrl":  res.PaymentURL,
	})
}
