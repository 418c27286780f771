package controllers

import (
	"errors"
	"log"

	"github.com/amirulizwan/KedaiKit/internal/pkg/audit"
	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/amirulizwan/KedaiKit/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
)

const webhookEndpointPath = "/api/webhooks/toyyibpay"

// WebhookController ingests ToyyibPay payment callbacks. Every delivery is
// written to the idempotency ledger before any business logic runs, and the
// endpoint answers success-shaped whenever processing fails after that point:
// ToyyibPay retries on non-2xx and the ledger already owns the event, so a
// retry would only produce duplicate rows. The single exception is a failed
// cross-check against the gateway, which gets a 400.
type WebhookController struct {
	orders  OrderOrchestrator
	ledger  WebhookLedger
	gateway payment.Gateway
}

func NewWebhookController(orders OrderOrchestrator, ledger WebhookLedger, gateway payment.Gateway) *WebhookController {
	return &WebhookController{orders: orders, ledger: ledger, gateway: gateway}
}

// HandleToyyibPayPing answers the gateway's endpoint probe.
func (ctl *WebhookController) HandleToyyibPayPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ToyyibPay webhook endpoint aktif",
	})
}

// HandleToyyibPayWebhook runs the ingestion pipeline: dedupe, record, verify
// against the gateway, then drive the order state machine.
func (ctl *WebhookController) HandleToyyibPayWebhook(c *fiber.Ctx) error {
	var payload payment.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("toyyibpay webhook: unparseable body: %v", err)
		return jsonError(c, fiber.StatusBadRequest, "Payload tidak sah")
	}

	eventID := payment.EventID(payload)
	if payload.BillCode == "" || payload.RefNo == "" {
		log.Printf("toyyibpay webhook: missing billcode or refno (order_id=%s)", payload.OrderID)
		return jsonError(c, fiber.StatusBadRequest, "Payload tidak sah")
	}

	ctx := c.Context()

	check, err := ctl.ledger.CheckIdempotency(ctx, payment.Provider, eventID)
	if err != nil {
		log.Printf("toyyibpay webhook: idempotency check failed for %s: %v", eventID, err)
		return c.JSON(fiber.Map{"success": true, "message": "Diterima"})
	}
	if check.IsDuplicate {
		return c.JSON(fiber.Map{"success": true, "message": "Already processed"})
	}

	owned, entry, err := ctl.ledger.Record(ctx, payment.Provider, eventID, webhookEndpointPath, string(c.BodyRaw()))
	if err != nil {
		log.Printf("toyyibpay webhook: ledger write failed for %s: %v", eventID, err)
		return c.JSON(fiber.Map{"success": true, "message": "Diterima"})
	}
	if !owned && entry != nil && entry.Processed {
		// Lost the insert race to an already-finished delivery.
		return c.JSON(fiber.Map{"success": true, "message": "Already processed"})
	}

	// ToyyibPay callbacks carry no signature; the payload's claims are only
	// trusted after a cross-check against the gateway's own record of the bill.
	verified := ctl.gateway.VerifyWebhook(ctx, payload)
	if !verified.IsValid {
		_ = ctl.ledger.MarkProcessed(ctx, entry, errors.New("gateway verification failed for bill "+payload.BillCode))
		return jsonError(c, fiber.StatusBadRequest, "Pengesahan pembayaran gagal")
	}
	orderID := verified.OrderID

	var processingErr error
	if payment.IsPaymentSuccessful(payload.Status) {
		processingErr = ctl.orders.HandlePaymentSuccess(ctx, orderID, payload.RefNo)
		if errors.Is(processingErr, order.ErrOrderFulfilled) || errors.Is(processingErr, order.ErrFulfillmentInProgress) {
			// Benign replays; the order is already where it needs to be.
			processingErr = nil
		}
	} else {
		processingErr = ctl.orders.HandlePaymentFailure(ctx, orderID, payload.Reason)
	}

	if err := ctl.ledger.MarkProcessed(ctx, entry, processingErr); err != nil {
		log.Printf("toyyibpay webhook: mark processed failed for %s: %v", eventID, err)
	}
	if processingErr != nil {
		log.Printf("toyyibpay webhook: processing failed for order %s: %v", orderID, processingErr)
	}

	audit.Event(audit.EventWebhookProcessed, map[string]interface{}{
		"provider": payment.Provider,
		"eventId":  eventID,
		"orderId":  orderID,
		"status":   payload.Status,
		"ok":       processingErr == nil,
	})

	return c.JSON(fiber.Map{"success": true})
}
