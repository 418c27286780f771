package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeployer struct {
	slugCalls []string
	fullCalls int
	result    bool
}

func (d *recordingDeployer) TriggerDeploy(_ context.Context, slug string) bool {
	d.slugCalls = append(d.slugCalls, slug)
	return d.result
}

func (d *recordingDeployer) TriggerFullDeploy(context.Context) bool {
	d.fullCalls++
	return d.result
}

func newAdminTestApp(orch *fakeOrchestrator, deployer *recordingDeployer) *fiber.App {
	app := fiber.New()
	ctl := NewAdminController(orch, deployer)
	app.Get("/api/admin/orders", ctl.HandleListOrders)
	app.Post("/api/admin/orders", ctl.HandleOrderAction)
	app.Post("/api/admin/deploy", ctl.HandleManualDeploy)
	return app
}

func adminPost(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]interface{}
	rawBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rawBody, &body))
	return resp, body
}

func adminOrder(id, status string) *models.Order {
	return &models.Order{
		ID:          id,
		OrderNumber: "KD-20260829-A1B2C",
		StoreSlug:   "kedai-baju-mira",
		PlanType:    models.PlanPro,
		Amount:      59,
		Status:      status,
		CreatedAt:   time.Now(),
	}
}

func TestAdminListOrders_Pagination(t *testing.T) {
	orch := &fakeOrchestrator{
		listOrders: []models.Order{*adminOrder("o1", "pending"), *adminOrder("o2", "completed")},
		listTotal:  5,
	}
	app := newAdminTestApp(orch, &recordingDeployer{result: true})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?limit=2&offset=0", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))

	orders := body["orders"].([]interface{})
	assert.Len(t, orders, 2)

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(5), pagination["total"])
	assert.Equal(t, true, pagination["hasMore"])
}

func TestAdminOrderAction_RetryDeploy(t *testing.T) {
	orch := &fakeOrchestrator{
		ordersByID: map[string]*models.Order{"o1": adminOrder("o1", "completed")},
	}
	app := newAdminTestApp(orch, &recordingDeployer{result: true})

	resp, body := adminPost(t, app, "/api/admin/orders", map[string]interface{}{
		"action":  "retry-deploy",
		"orderId": "o1",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"o1"}, orch.retryCalls)
}

func TestAdminOrderAction_GuardErrorsMapToConflict(t *testing.T) {
	orch := &fakeOrchestrator{
		retryErr:   order.ErrRetryNotAllowed,
		refundErr:  order.ErrRefundNotAllowed,
		ordersByID: map[string]*models.Order{"o1": adminOrder("o1", "completed")},
	}
	app := newAdminTestApp(orch, &recordingDeployer{result: true})

	for _, action := range []string{"retry-deploy", "mark-refunded"} {
		resp, body := adminPost(t, app, "/api/admin/orders", map[string]interface{}{
			"action":  action,
			"orderId": "o1",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode, "action %s", action)
		assert.Equal(t, false, body["success"])
	}
}

func TestAdminOrderAction_UnknownAction(t *testing.T) {
	app := newAdminTestApp(&fakeOrchestrator{}, &recordingDeployer{result: true})

	resp, _ := adminPost(t, app, "/api/admin/orders", map[string]interface{}{
		"action":  "explode",
		"orderId": "o1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminManualDeploy_BySlug(t *testing.T) {
	deployer := &recordingDeployer{result: true}
	app := newAdminTestApp(&fakeOrchestrator{}, deployer)

	resp, body := adminPost(t, app, "/api/admin/deploy", map[string]interface{}{
		"storeSlug": "kedai-baju-mira",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"kedai-baju-mira"}, deployer.slugCalls)
}

func TestAdminManualDeploy_ByOrderID(t *testing.T) {
	deployer := &recordingDeployer{result: true}
	orch := &fakeOrchestrator{
		ordersByID: map[string]*models.Order{"o1": adminOrder("o1", "completed")},
	}
	app := newAdminTestApp(orch, deployer)

	resp, _ := adminPost(t, app, "/api/admin/deploy", map[string]interface{}{
		"orderId": "o1",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"kedai-baju-mira"}, deployer.slugCalls)
}

func TestAdminManualDeploy_Full(t *testing.T) {
	deployer := &recordingDeployer{result: true}
	app := newAdminTestApp(&fakeOrchestrator{}, deployer)

	resp, _ := adminPost(t, app, "/api/admin/deploy", map[string]interface{}{
		"fullDeploy": true,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, deployer.fullCalls)
	assert.Empty(t, deployer.slugCalls)
}

func TestAdminManualDeploy_MissingTarget(t *testing.T) {
	app := newAdminTestApp(&fakeOrchestrator{}, &recordingDeployer{result: true})

	resp, _ := adminPost(t, app, "/api/admin/deploy", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminManualDeploy_HookFailure(t *testing.T) {
	app := newAdminTestApp(&fakeOrchestrator{}, &recordingDeployer{result: false})

	resp, body := adminPost(t, app, "/api/admin/deploy", map[string]interface{}{
		"storeSlug": "kedai-baju-mira",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}
