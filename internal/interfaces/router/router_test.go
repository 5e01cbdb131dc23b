package router

import (
	"io"
	"net/http/httptest"
	"testing"

	"sfms-backend/internal/config"
	"sfms-backend/internal/middleware"
	"sfms-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	mr := miniredis.RunT(t)
	return &config.Config{
		Env:           "test",
		SessionSecret: "secret",
		DatabaseURL:   "sqlite://:memory:",
		RedisURL:      "redis://" + mr.Addr(),
		TimeZone:      "Asia/Bangkok",
		RateLimitMax:  1000,
		StaffKey:      "staff-key",
	}
}

func createTestApp(t *testing.T) *fiber.App {
	app, db, rdb, err := CreateApp(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return app
}

func TestCreateApp_RequiresDatabaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseURL = ""
	_, _, _, err := CreateApp(cfg)
	assert.ErrorIs(t, err, ErrDatabaseURLRequired)
}

func TestHealthPlain(t *testing.T) {
	app := createTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(b))
}

func TestRoutes_StaffAndUserFlow(t *testing.T) {
	app := createTestApp(t)

	staff := &testutil.Browser{App: app, CookieName: middleware.SessionCookieName}
	resp := staff.Do(t, testutil.JSONRequest("POST", "/api/v1/session", map[string]string{"user_id": "s1", "role": "staff", "staff_key": "staff-key"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = staff.Do(t, testutil.JSONRequest("POST", "/api/v1/staff/equipments", map[string]interface{}{"name": "Badminton Racket", "stock": 10}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	user := &testutil.Browser{App: app, CookieName: middleware.SessionCookieName}
	resp = user.Do(t, testutil.JSONRequest("POST", "/api/v1/borrow-return", map[string]interface{}{"action": "borrow", "equipment": "Badminton Racket", "qty": 3}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "no principal yet")

	resp = user.Do(t, testutil.JSONRequest("POST", "/api/v1/session", map[string]string{"user_id": "6531501001"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = user.Do(t, testutil.JSONRequest("POST", "/api/v1/borrow-return", map[string]interface{}{"action": "borrow", "equipment": "Badminton Racket", "qty": 3}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 7, testutil.Data(t, testutil.DecodeBody(t, resp))["stock"])

	resp = user.Do(t, testutil.JSONRequest("GET", "/api/v1/staff/borrow-records", nil))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = staff.Do(t, testutil.JSONRequest("GET", "/api/v1/staff/borrow-records?student=6531501001", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rows := testutil.DecodeBody(t, resp)["data"].([]interface{})
	assert.Len(t, rows, 1)

	resp = user.Do(t, testutil.JSONRequest("GET", "/api/v1/equipments", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoutes_PoolLockIsPerSession(t *testing.T) {
	app := createTestApp(t)

	a := &testutil.Browser{App: app, CookieName: middleware.SessionCookieName}
	b := &testutil.Browser{App: app, CookieName: middleware.SessionCookieName}
	for _, br := range []*testutil.Browser{a, b} {
		resp := br.Do(t, testutil.JSONRequest("POST", "/api/v1/session", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := a.Do(t, testutil.JSONRequest("POST", "/api/v1/check-event", map[string]string{"facility": "pool", "action": "in"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = a.Do(t, testutil.JSONRequest("POST", "/api/v1/check-event", map[string]string{"facility": "track", "action": "in"}))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = b.Do(t, testutil.JSONRequest("POST", "/api/v1/check-event", map[string]string{"facility": "track", "action": "in"}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = a.Do(t, testutil.JSONRequest("POST", "/api/v1/pool/checkout", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", testutil.Data(t, testutil.DecodeBody(t, resp))["status"])

	resp = a.Do(t, testutil.JSONRequest("POST", "/api/v1/check-event", map[string]string{"facility": "track", "action": "in"}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
