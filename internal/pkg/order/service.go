package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/amirulizwan/KedaiKit/app/repository"
	"github.com/amirulizwan/KedaiKit/internal/pkg/audit"
	"github.com/amirulizwan/KedaiKit/internal/pkg/deploy"
	"github.com/amirulizwan/KedaiKit/internal/pkg/mail"
	"github.com/amirulizwan/KedaiKit/internal/pkg/payment"
	"github.com/amirulizwan/KedaiKit/internal/pkg/slugify"
	"github.com/amirulizwan/KedaiKit/internal/pkg/validate"
)

var (
	// ErrOrderFulfilled means the order is already completed or refunded;
	// replayed fulfillment attempts stop here without side effects.
	ErrOrderFulfilled = errors.New("order already fulfilled")

	// ErrFulfillmentInProgress means a concurrent caller won the
	// paid->deploying transition; this caller must not run side effects.
	ErrFulfillmentInProgress = errors.New("fulfillment already in progress")

	// ErrRetryNotAllowed guards the admin retry path.
	ErrRetryNotAllowed = errors.New("order cannot be redeployed")

	// ErrRefundNotAllowed guards the admin refund path.
	ErrRefundNotAllowed = errors.New("order cannot be refunded")
)

// Service owns the order state machine: it creates orders, decides the
// free-vs-paid path, and drives fulfillment (store creation, cache
// revalidation, notification emails) once payment is confirmed.
type Service struct {
	orders    repository.OrderRepository
	stores    repository.StoreRepository
	templates repository.TemplateRepository
	gateway   payment.Gateway
	deployer  deploy.Triggerer
	mailer    mail.Mailer
	appURL    string
}

// NewService wires the orchestrator from injected collaborators.
func NewService(
	repos *repository.Repositories,
	gateway payment.Gateway,
	deployer deploy.Triggerer,
	mailer mail.Mailer,
	appURL string,
) *Service {
	return &Service{
		orders:    repos.Order,
		stores:    repos.Store,
		templates: repos.Template,
		gateway:   gateway,
		deployer:  deployer,
		mailer:    mailer,
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

// CreateOrder reserves the store identity, persists the order and either
// fulfills immediately (free plan) or parks the order in pending behind a
// payment bill (paid plans). The amount is always derived from the plan.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	orderNumber, err := slugify.GenerateOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}
	storeSlug, err := slugify.GenerateUniqueSlug(in.StoreName)
	if err != nil {
		return nil, fmt.Errorf("generate store slug: %w", err)
	}

	o := &models.Order{
		OrderNumber: orderNumber,
		StoreSlug:   storeSlug,
		StoreName:   in.StoreName,
		FullName:    in.FullName,
		Email:       in.Email,
		Whatsapp:    validate.NormalizePhone(in.Whatsapp),
		TemplateKey: in.TemplateKey,
		PlanType:    in.PlanType,
		Amount:      PriceFor(in.PlanType),
		Status:      models.OrderStatusPending,
	}
	if err := s.orders.Create(o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	audit.Event(audit.EventOrderCreated, map[string]interface{}{
		"orderId":     o.ID,
		"orderNumber": orderNumber,
		"email":       o.Email,
		"planType":    o.PlanType,
		"amount":      o.Amount,
	})

	// The free plan has no external payment wait, so the whole pipeline
	// collapses synchronously into the creation call.
	if o.PlanType == models.PlanFree {
		if err := s.fulfillFreePlan(ctx, o); err != nil {
			return nil, err
		}
		return &CreateOrderResult{
			OrderID:     o.ID,
			OrderNumber: orderNumber,
			PaymentURL:  s.StoreURL(storeSlug),
		}, nil
	}

	bill := s.gateway.CreateBill(ctx, payment.CreateBillInput{
		Name:                fmt.Sprintf("KEDAI - %s Plan", strings.ToUpper(o.PlanType)),
		Description:         fmt.Sprintf("Langganan %s untuk kedai %s", o.PlanType, o.StoreName),
		AmountCents:         payment.FormatAmount(o.Amount),
		ReturnURL:           fmt.Sprintf("%s/thankyou?order=%s", s.appURL, orderNumber),
		CallbackURL:         s.appURL + "/api/webhooks/toyyibpay",
		ExternalReferenceNo: o.ID,
		PayorName:           o.FullName,
		PayorEmail:          o.Email,
		PayorPhone:          o.Whatsapp,
	})
	if !bill.Success {
		s.markFailed(o.ID)
		if bill.Error != "" {
			return nil, errors.New(bill.Error)
		}
		return nil, errors.New("gagal mencipta bil pembayaran")
	}

	if err := s.orders.UpdateFields(o.ID, map[string]interface{}{
		"toyyib_bill_code": bill.BillCode,
		"payment_url":      bill.PaymentURL,
	}); err != nil {
		return nil, fmt.Errorf("persist bill info: %w", err)
	}

	return &CreateOrderResult{
		OrderID:     o.ID,
		OrderNumber: orderNumber,
		PaymentURL:  bill.PaymentURL,
	}, nil
}

// fulfillFreePlan drives the atomic pending->paid->completed path.
func (s *Service) fulfillFreePlan(ctx context.Context, o *models.Order) error {
	now := time.Now()
	if _, err := s.orders.TransitionStatus(o.ID,
		[]string{models.OrderStatusPending}, models.OrderStatusPaid,
		map[string]interface{}{"paid_at": &now}); err != nil {
		s.markFailed(o.ID)
		return fmt.Errorf("mark free order paid: %w", err)
	}

	if err := s.createStoreWithProducts(o); err != nil {
		s.markFailed(o.ID)
		return err
	}

	deployedAt := time.Now()
	if _, err := s.orders.TransitionStatus(o.ID,
		[]string{models.OrderStatusPaid}, models.OrderStatusCompleted,
		map[string]interface{}{"deployed_at": &deployedAt}); err != nil {
		s.markFailed(o.ID)
		return fmt.Errorf("complete free order: %w", err)
	}

	audit.Event(audit.EventFreePlanCompleted, map[string]interface{}{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"storeSlug":   o.StoreSlug,
	})
	return nil
}

// HandlePaymentSuccess drives paid->deploying->completed once the gateway has
// confirmed payment. Both the webhook endpoint and the admin retry path call
// it; the conditional deploying transition makes sure only one concurrent
// caller proceeds past the guard.
func (s *Service) HandlePaymentSuccess(ctx context.Context, orderID, gatewayRef string) error {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("order not found: %s: %w", orderID, err)
	}
	if o.IsFinal() {
		return ErrOrderFulfilled
	}

	if o.Status == models.OrderStatusPending {
		now := time.Now()
		extra := map[string]interface{}{"paid_at": &now}
		if gatewayRef != "" {
			extra["toyyib_ref"] = gatewayRef
		}
		if _, err := s.orders.TransitionStatus(o.ID,
			[]string{models.OrderStatusPending}, models.OrderStatusPaid, extra); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		audit.Event(audit.EventPaymentReceived, map[string]interface{}{
			"orderId":     o.ID,
			"orderNumber": o.OrderNumber,
			"amount":      o.Amount,
		})
	}

	// Advisory lock: only the caller that wins paid|failed->deploying may run
	// the fulfillment side effects.
	ok, err := s.orders.TransitionStatus(o.ID,
		[]string{models.OrderStatusPaid, models.OrderStatusFailed}, models.OrderStatusDeploying, nil)
	if err != nil {
		return fmt.Errorf("enter deploying: %w", err)
	}
	if !ok {
		return ErrFulfillmentInProgress
	}

	if err := s.createStoreWithProducts(o); err != nil {
		s.markFailed(o.ID)
		return err
	}

	if !s.deployer.TriggerDeploy(ctx, o.StoreSlug) {
		// The trigger swallows its own errors; a false here means the hosting
		// hook genuinely failed. The store row exists and the page will be
		// rendered on next demand, so the order still completes.
		log.Printf("deploy trigger failed for %s (order %s)", o.StoreSlug, o.ID)
	}

	deployedAt := time.Now()
	ok, err = s.orders.TransitionStatus(o.ID,
		[]string{models.OrderStatusDeploying}, models.OrderStatusCompleted,
		map[string]interface{}{"deployed_at": &deployedAt})
	if err != nil {
		s.markFailed(o.ID)
		return fmt.Errorf("complete order: %w", err)
	}
	if !ok {
		return ErrFulfillmentInProgress
	}

	s.sendFulfillmentEmails(o)

	audit.Event(audit.EventDeploymentCompleted, map[string]interface{}{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"storeSlug":   o.StoreSlug,
	})
	return nil
}

// HandlePaymentFailure records a failed or abandoned payment callback. Only a
// pending order moves to failed; once money is captured the failure callback
// is stale and ignored.
func (s *Service) HandlePaymentFailure(ctx context.Context, orderID, reason string) error {
	_ = ctx
	ok, err := s.orders.TransitionStatus(orderID,
		[]string{models.OrderStatusPending}, models.OrderStatusFailed, nil)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	if !ok {
		return nil
	}

	audit.Event(audit.EventOrderStatusUpdated, map[string]interface{}{
		"orderId": orderID,
		"status":  models.OrderStatusFailed,
		"reason":  reason,
	})
	return nil
}

// RetryDeploy re-enters the fulfillment path for a paid or failed order.
func (s *Service) RetryDeploy(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("order not found: %s: %w", orderID, err)
	}
	if o.Status != models.OrderStatusPaid && o.Status != models.OrderStatusFailed {
		return ErrRetryNotAllowed
	}
	return s.HandlePaymentSuccess(ctx, orderID, o.ToyyibRef)
}

// MarkRefunded is a status-only admin action, valid from paid or failed. The
// store row is untouched; deactivating it is a separate decision.
func (s *Service) MarkRefunded(ctx context.Context, orderID string) error {
	_ = ctx
	ok, err := s.orders.TransitionStatus(orderID,
		[]string{models.OrderStatusPaid, models.OrderStatusFailed}, models.OrderStatusRefunded, nil)
	if err != nil {
		return fmt.Errorf("mark refunded: %w", err)
	}
	if !ok {
		return ErrRefundNotAllowed
	}

	audit.Event(audit.EventOrderStatusUpdated, map[string]interface{}{
		"orderId": orderID,
		"status":  models.OrderStatusRefunded,
	})
	return nil
}

// GetOrderByID loads one order.
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	_ = ctx
	return s.orders.GetByID(orderID)
}

// GetOrderByNumber loads one order by its human-facing number.
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	_ = ctx
	return s.orders.GetByNumber(orderNumber)
}

// ListOrders returns orders for the admin dashboard, newest first.
func (s *Service) ListOrders(ctx context.Context, opts ListOptions) ([]models.Order, int64, error) {
	_ = ctx
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.orders.List(opts.Status, opts.Limit, opts.Offset)
}

// StoreURL is the public URL of a storefront.
func (s *Service) StoreURL(slug string) string {
	return s.appURL + "/" + slug
}

// createStoreWithProducts creates the store row and copies the template's
// sample products. Both writes tolerate re-runs: the store insert is
// slug-conditional and products are only seeded into an empty catalog.
func (s *Service) createStoreWithProducts(o *models.Order) error {
	themeJSON := "{}"
	var samples []models.SampleProduct

	tpl, err := s.templates.GetByKey(o.TemplateKey)
	if err != nil {
		log.Printf("template %q not found for order %s, creating store with defaults", o.TemplateKey, o.ID)
	} else {
		if tpl.ThemeJSON != "" {
			themeJSON = tpl.ThemeJSON
		}
		samples, err = tpl.SampleProducts()
		if err != nil {
			return fmt.Errorf("decode template sample products: %w", err)
		}
	}

	name := o.StoreName
	if name == "" {
		name = o.FullName
	}

	created, stored, err := s.stores.CreateIfAbsent(&models.Store{
		Slug:        o.StoreSlug,
		Name:        name,
		Whatsapp:    o.Whatsapp,
		Email:       o.Email,
		ThemeJSON:   themeJSON,
		TemplateKey: o.TemplateKey,
		IsPremium:   o.PlanType != models.PlanFree,
		IsActive:    true,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	if len(samples) == 0 {
		return nil
	}
	if !created {
		// Retried fulfillment: seed only if the earlier attempt died before
		// the catalog was written.
		count, err := s.stores.CountProducts(stored.ID)
		if err != nil {
			return fmt.Errorf("count seed products: %w", err)
		}
		if count > 0 {
			return nil
		}
	}

	products := make([]models.Product, 0, len(samples))
	for i, sample := range samples {
		images, err := json.Marshal([]string{sample.Image})
		if err != nil {
			return fmt.Errorf("encode product images: %w", err)
		}
		products = append(products, models.Product{
			StoreID:    stored.ID,
			Name:       sample.Name,
			Price:      sample.Price,
			ImagesJSON: string(images),
			IsActive:   true,
			SortOrder:  i,
		})
	}
	if err := s.stores.CreateProducts(products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

func (s *Service) sendFulfillmentEmails(o *models.Order) {
	storeURL := s.StoreURL(o.StoreSlug)
	storeName := o.StoreName
	if storeName == "" {
		storeName = o.FullName
	}

	// Mail failures are logged, never fatal: the store is live and money is
	// captured; re-running fulfillment for a missing email would be worse.
	if err := s.mailer.Send(o.Email,
		mail.OrderConfirmationSubject(o.OrderNumber),
		mail.OrderConfirmationBody(mail.OrderConfirmationData{
			CustomerName: o.FullName,
			OrderNumber:  o.OrderNumber,
			StoreName:    storeName,
			StoreURL:     storeURL,
			Amount:       o.Amount,
		})); err != nil {
		log.Printf("order confirmation email failed for %s: %v", o.ID, err)
	}

	if err := s.mailer.Send(o.Email,
		mail.DeploymentCompleteSubject(storeName),
		mail.DeploymentCompleteBody(mail.DeploymentCompleteData{
			StoreName: storeName,
			StoreURL:  storeURL,
		})); err != nil {
		log.Printf("deployment email failed for %s: %v", o.ID, err)
	}
}

func (s *Service) markFailed(orderID string) {
	// Conditional write: a completed or refunded order never regresses.
	ok, err := s.orders.TransitionStatus(orderID,
		[]string{models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusDeploying},
		models.OrderStatusFailed, nil)
	if err != nil {
		log.Printf("failed to mark order %s as failed: %v", orderID, err)
		return
	}
	if !ok {
		return
	}
	audit.Event(audit.EventOrderStatusUpdated, map[string]interface{}{
		"orderId": orderID,
		"status":  models.OrderStatusFailed,
	})
}
