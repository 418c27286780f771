package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirulizwan/KedaiKit/internal/pkg/order"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutTestApp(orch *fakeOrchestrator) *fiber.App {
	app := fiber.New()
	app.Post("/api/checkout", NewCheckoutController(orch).HandleCheckout)
	return app
}

func postCheckout(t *testing.T, app *fiber.App, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]interface{}
	rawBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rawBody, &body))
	return resp, body
}

func validCheckoutPayload() map[string]interface{} {
	return map[string]interface{}{
		"fullName":    "Mira Aziz",
		"email":       "mira@example.com",
		"whatsapp":    "0123456789",
		"storeName":   "Kedai Baju Mira",
		"templateKey": "minimalis-moden",
		"planType":    "pro",
	}
}

func TestCheckout_Success(t *testing.T) {
	orch := &fakeOrchestrator{
		createOrderRes: &order.CreateOrderResult{
			OrderID:     "order-1",
			OrderNumber: "KD-20260829-A1B2C",
			PaymentURL:  "https://toyyibpay.com/abc123",
		},
	}
	app := newCheckoutTestApp(orch)

	resp, body := postCheckout(t, app, validCheckoutPayload())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "KD-20260829-A1B2C", body["orderNumber"])
	assert.Equal(t, "https://toyyibpay.com/abc123", body["paymentUrl"])

	require.NotNil(t, orch.createOrderIn)
	assert.Equal(t, "pro", orch.createOrderIn.PlanType)
	assert.Equal(t, "Kedai Baju Mira", orch.createOrderIn.StoreName)
}

func TestCheckout_DefaultsPlanToFree(t *testing.T) {
	orch := &fakeOrchestrator{
		createOrderRes: &order.CreateOrderResult{OrderID: "order-1"},
	}
	app := newCheckoutTestApp(orch)

	payload := validCheckoutPayload()
	delete(payload, "planType")
	resp, _ := postCheckout(t, app, payload)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, orch.createOrderIn)
	assert.Equal(t, "free", orch.createOrderIn.PlanType)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]interface{})
		wantField string
	}{
		{
			name:      "short name",
			mutate:    func(p map[string]interface{}) { p["fullName"] = "M" },
			wantField: "fullName",
		},
		{
			name:      "bad email",
			mutate:    func(p map[string]interface{}) { p["email"] = "not-an-email" },
			wantField: "email",
		},
		{
			name:      "short whatsapp",
			mutate:    func(p map[string]interface{}) { p["whatsapp"] = "0123" },
			wantField: "whatsapp",
		},
		{
			name:      "whatsapp with letters",
			mutate:    func(p map[string]interface{}) { p["whatsapp"] = "01234abcde" },
			wantField: "whatsapp",
		},
		{
			name:      "missing template",
			mutate:    func(p map[string]interface{}) { delete(p, "templateKey") },
			wantField: "templateKey",
		},
		{
			name:      "unknown plan",
			mutate:    func(p map[string]interface{}) { p["planType"] = "platinum" },
			wantField: "planType",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orch := &fakeOrchestrator{}
			app := newCheckoutTestApp(orch)

			payload := validCheckoutPayload()
			tc.mutate(payload)
			resp, body := postCheckout(t, app, payload)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])

			fieldErrors, ok := body["errors"].(map[string]interface{})
			require.True(t, ok, "response must carry a field error map")
			assert.Contains(t, fieldErrors, tc.wantField)

			// Validation failures must not create anything.
			assert.Nil(t, orch.createOrderIn)
		})
	}
}

func TestCheckout_ServiceFailure(t *testing.T) {
	orch := &fakeOrchestrator{createOrderErr: assert.AnError}
	app := newCheckoutTestApp(orch)

	resp, body := postCheckout(t, app, validCheckoutPayload())

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}
