package controllers

import (
	"context"
	"time"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/amirulizwan/KedaiKit/internal/pkg/ledger"
	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/gofiber/fiber/v2"
)

// OrderOrchestrator is the slice of the order service the HTTP layer depends
// on. Tests substitute fakes.
type OrderOrchestrator interface {
	CreateOrder(ctx context.Context, in order.CreateOrderInput) (*order.CreateOrderResult, error)
	HandlePaymentSuccess(ctx context.Context, orderID, gatewayRef string) error
	HandlePaymentFailure(ctx context.Context, orderID, reason string) error
	RetryDeploy(ctx context.Context, orderID string) error
	MarkRefunded(ctx context.Context, orderID string) error
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, opts order.ListOptions) ([]models.Order, int64, error)
	StoreURL(slug string) string
}

// WebhookLedger is the idempotency ledger surface the webhook endpoint uses.
type WebhookLedger interface {
	CheckIdempotency(ctx context.Context, provider, eventID string) (ledger.CheckResult, error)
	Record(ctx context.Context, provider, eventID, endpoint, rawPayload string) (bool, *models.WebhookLog, error)
	MarkProcessed(ctx context.Context, entry *models.WebhookLog, processingErr error) error
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// orderJSON is the admin-facing serialization of an order.
func orderJSON(o *models.Order) fiber.Map {
	return fiber.Map{
		"id":             o.ID,
		"orderNumber":    o.OrderNumber,
		"storeSlug":      o.StoreSlug,
		"storeName":      o.StoreName,
		"fullName":       o.FullName,
		"email":          o.Email,
		"whatsapp":       o.Whatsapp,
		"templateKey":    o.TemplateKey,
		"planType":       o.PlanType,
		"amount":         o.Amount,
		"status":         o.Status,
		"toyyibBillCode": o.ToyyibBillCode,
		"toyyibRef":      o.ToyyibRef,
		"paymentUrl":     o.PaymentURL,
		"paidAt":         formatTimePtr(o.PaidAt),
		"deployedAt":     formatTimePtr(o.DeployedAt),
		"createdAt":      o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
