package router

import (
	"time"

	"github.com/amirulizwan/KedaiKit/app/controllers"
	"github.com/amirulizwan/KedaiKit/app/repository"
	"github.com/amirulizwan/KedaiKit/internal/pkg/alert"
	"github.com/amirulizwan/KedaiKit/internal/pkg/cache"
	"github.com/amirulizwan/KedaiKit/internal/pkg/deploy"
	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
	"github.com/amirulizwan/KedaiKit/internal/pkg/ledger"
	"github.com/amirulizwan/KedaiKit/internal/pkg/mail"
	"github.com/amirulizwan/KedaiKit/internal/pkg/middleware"
	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/amirulizwan/KedaiKit/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repos := repository.GetGlobalRepositories()

	gateway := payment.NewClientFromEnv()
	deployer := deploy.NewTriggerFromEnv()
	notifier := alert.NewNotifierFromEnv()
	appURL := env.GetEnv("APP_URL", "http://localhost:3000")

	orderSvc := order.NewService(repos, gateway, deployer, mail.SMTPMailer{}, appURL)
	ledgerSvc := ledger.NewService(repos.WebhookLog, notifier)

	checkout := controllers.NewCheckoutController(orderSvc)
	webhook := controllers.NewWebhookController(orderSvc, ledgerSvc, gateway)
	store := controllers.NewStoreController(repos.Store, redisCache{})
	templates := controllers.NewTemplateController(repos.Template)
	orders := controllers.NewOrderController(orderSvc)
	admin := controllers.NewAdminController(orderSvc, deployer)
	revalidate := controllers.NewRevalidateController(redisCache{})

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "KedaiKit API",
		})
	})

	api.Post("/checkout", checkout.HandleCheckout)
	api.Get("/webhooks/toyyibpay", webhook.HandleToyyibPayPing)
	api.Post("/webhooks/toyyibpay", webhook.HandleToyyibPayWebhook)
	api.Get("/stores/:slug", store.HandleGetStore)
	api.Get("/templates", templates.HandleListTemplates)
	api.Get("/orders/:orderNumber", orders.HandleGetOrderStatus)
	api.Post("/revalidate", revalidate.HandleRevalidate)

	adminGroup := api.Group("/admin", middleware.AdminAuthMiddleware())
	adminGroup.Get("/orders", admin.HandleListOrders)
	adminGroup.Post("/orders", admin.HandleOrderAction)
	adminGroup.Post("/deploy", admin.HandleManualDeploy)
}

// redisCache adapts the package-level cache functions to the controller
// interfaces.
type redisCache struct{}

func (redisCache) Get(key string) (string, error) {
	return cache.Get(key)
}

func (redisCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

func (redisCache) Delete(key ...string) error {
	return cache.Delete(key...)
}

func (redisCache) DeleteByPattern(pattern string) error {
	return cache.DeleteByPattern(pattern)
}
