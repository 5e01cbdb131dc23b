package scancodes

import (
	"errors"

	"sfms-backend/internal/application/scancodes"
	"sfms-backend/internal/domain"
	checkinhandlers "sfms-backend/internal/interfaces/handlers/checkins"
	"sfms-backend/internal/pkg/response"
	"sfms-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// scanSessionPrefix keys the pool lock of front-desk scans by user instead of browser session.
const scanSessionPrefix = "scan:"

type Handlers struct {
	Service *scancodes.Service
	Checks  *checkinhandlers.Handlers
}

type SetScanCodeRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Pin         string `json:"pin" validate:"required,min=4,max=32"`
	DisplayName string `json:"display_name" validate:"max=255"`
}

type ScanRequest struct {
	Email    string `json:"email" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
	Facility string `json:"facility" validate:"required"`
}

// SetScanCode POST /api/v1/staff/scan-codes
func (h *Handlers) SetScanCode(c *fiber.Ctx) error {
	var req SetScanCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	u, err := h.Service.SetScanCode(c.Context(), req.Email, req.Pin, req.DisplayName)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Scan code saved", u, nil)
}

// CheckIn POST /api/v1/scan/check-in
func (h *Handlers) CheckIn(c *fiber.Ctx) error {
	return h.scan(c, domain.CheckIn)
}

// CheckOut POST /api/v1/scan/check-out
func (h *Handlers) CheckOut(c *fiber.Ctx) error {
	return h.scan(c, domain.CheckOut)
}

func (h *Handlers) scan(c *fiber.Ctx, action domain.CheckAction) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	facility, err := domain.ParseFacility(req.Facility)
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.Verify(c.Context(), req.Email, req.Pin)
	if err != nil {
		return h.fail(c, err)
	}
	userID := u.ID.String()
	return h.Checks.Record(c, scanSessionPrefix+userID, &userID, facility, action)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, scancodes.ErrMissingFields) {
		return response.BadRequest(c, err.Error())
	}
	return response.FromError(c, err)
}
