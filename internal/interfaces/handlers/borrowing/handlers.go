package borrowing

import (
	"time"

	"sfms-backend/internal/application/borrowing"
	"sfms-backend/internal/domain"
	"sfms-backend/internal/middleware"
	"sfms-backend/internal/pkg/response"
	"sfms-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *borrowing.Service
}

// BorrowReturnRequest is the body of POST /borrow-return.
type BorrowReturnRequest struct {
	Action     string  `json:"action" validate:"required,oneof=borrow return"`
	Equipment  string  `json:"equipment" validate:"required"`
	Qty        int     `json:"qty" validate:"required,gt=0"`
	BorrowerID *string `json:"borrower_id"`
}

// ReturnRequest is the body of POST /equipment/return.
type ReturnRequest struct {
	Equipment  string  `json:"equipment" validate:"required"`
	Qty        int     `json:"qty" validate:"required,gt=0"`
	BorrowerID *string `json:"borrower_id"`
}

// UpdateRecordRequest holds the optional fields of a staff ledger edit.
type UpdateRecordRequest struct {
	Equipment  *string    `json:"equipment"`
	Qty        *int       `json:"qty" validate:"omitempty,gt=0"`
	Action     *string    `json:"action" validate:"omitempty,oneof=borrow return"`
	OccurredAt *time.Time `json:"occurred_at"`
	BorrowerID *string    `json:"borrower_id"`
}

// BorrowReturn POST /api/v1/borrow-return
func (h *Handlers) BorrowReturn(c *fiber.Ctx) error {
	var req BorrowReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	borrower := borrowerOrSession(c, req.BorrowerID)

	var (
		out *borrowing.Outcome
		err error
	)
	if req.Action == string(domain.ActionBorrow) {
		out, err = h.Service.Borrow(c.Context(), req.Equipment, req.Qty, borrower)
	} else {
		out, err = h.Service.Return(c.Context(), req.Equipment, req.Qty, borrower)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("action", req.Action).Str("equipment", out.Equipment).Int("qty", req.Qty).Int("stock", out.Stock).
		Msg("borrow-return recorded")
	return response.SuccessCreated(c, "Recorded", out, nil)
}

// Return POST /api/v1/equipment/return: returns the new stock level.
func (h *Handlers) Return(c *fiber.Ctx) error {
	var req ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	out, err := h.Service.Return(c.Context(), req.Equipment, req.Qty, borrowerOrSession(c, req.BorrowerID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Returned", fiber.Map{
		"ok":        true,
		"equipment": out.Equipment,
		"stock":     out.Stock,
	}, nil)
}

// ListRecords GET /api/v1/staff/borrow-records?student=
func (h *Handlers) ListRecords(c *fiber.Ctx) error {
	rows, err := h.Service.ListRecords(c.Context(), c.Query("student"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrow records fetched", rows, fiber.Map{"count": len(rows), "limit": borrowing.ListLimit})
}

// UpdateRecord PATCH /api/v1/staff/borrow-records/:id
func (h *Handlers) UpdateRecord(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid record id")
	}
	var req UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	in := borrowing.UpdateInput{
		Equipment:  req.Equipment,
		Qty:        req.Qty,
		OccurredAt: req.OccurredAt,
		BorrowerID: req.BorrowerID,
	}
	if req.Action != nil {
		a, err := domain.ParseBorrowAction(*req.Action)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		in.Action = &a
	}

	rec, adjustments, err := h.Service.UpdateRecord(c.Context(), uint(id), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrow record updated", fiber.Map{
		"record":      rec,
		"adjustments": adjustments,
	}, nil)
}

// DeleteRecord DELETE /api/v1/staff/borrow-records/:id
func (h *Handlers) DeleteRecord(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid record id")
	}
	adj, err := h.Service.DeleteRecord(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrow record deleted", fiber.Map{
		"id":         id,
		"adjustment": adj,
	}, nil)
}

// borrowerOrSession defaults the borrower to the session principal.
func borrowerOrSession(c *fiber.Ctx, given *string) *string {
	if given != nil && *given != "" {
		return given
	}
	if uid := middleware.GetUserID(c); uid != "" {
		return &uid
	}
	return nil
}
