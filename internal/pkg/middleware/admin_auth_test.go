package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/admin/ping", AdminAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestAdminAuth_ValidSecret(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "topsecret")
	app := newProtectedApp()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("x-admin-secret", "topsecret")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "topsecret")
	app := newProtectedApp()

	for _, header := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		if header != "" {
			req.Header.Set("x-admin-secret", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAdminAuth_UnconfiguredSecretLocksSurface(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "")
	app := newProtectedApp()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("x-admin-secret", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
