package scancodes

import (
	"testing"
	"time"

	"sfms-backend/internal/application/checkins"
	"sfms-backend/internal/application/scancodes"
	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"
	checkinhandlers "sfms-backend/internal/interfaces/handlers/checkins"
	"sfms-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupScanApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	clk := clock.NewFixed(time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC))
	ledger := &checkins.Ledger{DB: db, Location: time.UTC}
	h := &Handlers{
		Service: &scancodes.Service{DB: db},
		Checks: &checkinhandlers.Handlers{
			Guard:    &checkins.Guard{Flags: checkins.NewMemoryFlagStore(), Ledger: ledger, Clock: clk},
			Ledger:   ledger,
			Clock:    clk,
			Location: time.UTC,
		},
	}
	app := fiber.New()
	app.Post("/staff/scan-codes", h.SetScanCode)
	app.Post("/scan/check-in", h.CheckIn)
	app.Post("/scan/check-out", h.CheckOut)
	return app, db
}

func scan(email, pin, facility string) map[string]string {
	return map[string]string{"email": email, "pin": pin, "facility": facility}
}

func TestSetScanCode(t *testing.T) {
	app, _ := setupScanApp(t)

	resp, err := app.Test(testutil.JSONRequest("POST", "/staff/scan-codes", map[string]string{"email": "A@mfu.ac.th", "pin": "1234", "display_name": "Ann"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := testutil.Data(t, testutil.DecodeBody(t, resp))
	assert.Equal(t, "a@mfu.ac.th", data["email"])
	assert.NotContains(t, data, "scan_code_hash")

	resp, err = app.Test(testutil.JSONRequest("POST", "/staff/scan-codes", map[string]string{"email": "not-an-email", "pin": "1234"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(testutil.JSONRequest("POST", "/staff/scan-codes", map[string]string{"email": "b@mfu.ac.th", "pin": "12"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScan_PoolFlow(t *testing.T) {
	app, db := setupScanApp(t)
	_, err := app.Test(testutil.JSONRequest("POST", "/staff/scan-codes", map[string]string{"email": "a@mfu.ac.th", "pin": "1234"}))
	require.NoError(t, err)

	resp, err := app.Test(testutil.JSONRequest("POST", "/scan/check-in", scan("a@mfu.ac.th", "0000", "pool")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(testutil.JSONRequest("POST", "/scan/check-in", scan("a@mfu.ac.th", "1234", "pool")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, testutil.Data(t, testutil.DecodeBody(t, resp))["pool_locked"])

	resp, err = app.Test(testutil.JSONRequest("POST", "/scan/check-in", scan("a@mfu.ac.th", "1234", "track")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(testutil.JSONRequest("POST", "/scan/check-out", scan("A@mfu.ac.th ", "1234", "pool")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, testutil.Data(t, testutil.DecodeBody(t, resp))["ok"])

	var events []domain.CheckinEvent
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].UserID)
	var u domain.ScanUser
	require.NoError(t, db.First(&u).Error)
	assert.Equal(t, u.ID.String(), *events[0].UserID)
}

func TestScan_Validation(t *testing.T) {
	app, _ := setupScanApp(t)

	resp, err := app.Test(testutil.JSONRequest("POST", "/scan/check-in", map[string]string{"email": "a@mfu.ac.th", "facility": "pool"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(testutil.JSONRequest("POST", "/scan/check-in", scan("a@mfu.ac.th", "1234", "gym")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(testutil.JSONRequest("POST", "/scan/check-in", scan("nobody@mfu.ac.th", "1234", "pool")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
