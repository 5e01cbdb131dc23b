package equipment

import (
	"strings"

	"sfms-backend/internal/application/inventory"
	"sfms-backend/internal/pkg/response"
	"sfms-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *inventory.Service
}

type CreateRequest struct {
	Name  string `json:"name" validate:"required"`
	Stock *int   `json:"stock" validate:"required,gte=0"`
	Total *int   `json:"total" validate:"omitempty,gte=0"`
}

type PatchRequest struct {
	Name  *string `json:"name"`
	Stock *int    `json:"stock" validate:"omitempty,gte=0"`
	Total *int    `json:"total" validate:"omitempty,gte=0"`
}

// List GET /api/v1/equipments: public list ordered by name.
func (h *Handlers) List(c *fiber.Ctx) error {
	items, err := h.Service.ListAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment fetched", items, fiber.Map{"count": len(items)})
}

// Search GET /api/v1/staff/equipments?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	items, err := h.Service.Search(c.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment fetched", items, fiber.Map{"count": len(items), "limit": inventory.SearchLimit})
}

// Create POST /api/v1/staff/equipments: upsert by name.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	eq, err := h.Service.Upsert(c.Context(), req.Name, *req.Stock, req.Total)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Equipment saved", eq, nil)
}

// Patch PATCH /api/v1/staff/equipments/:id
func (h *Handlers) Patch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid equipment id")
	}
	var req PatchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	eq, err := h.Service.Patch(c.Context(), uint(id), inventory.PatchInput{
		Name:  req.Name,
		Stock: req.Stock,
		Total: req.Total,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Equipment updated", eq, nil)
}

// Delete DELETE /api/v1/staff/equipments/:id: ledger rows keep their history with a null equipment.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid equipment id")
	}
	deleted, err := h.Service.DeleteByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	if !deleted {
		return response.NotFound(c, "equipment not found")
	}
	return response.Success(c, "Equipment deleted", fiber.Map{"id": id}, nil)
}
