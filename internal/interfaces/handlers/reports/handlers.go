package reports

import (
	"bytes"
	"fmt"
	"time"

	"sfms-backend/internal/application/reports"
	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"
	"sfms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service  *reports.Service
	Clock    clock.Clock
	Location *time.Location
}

// BorrowStats GET /api/v1/borrow-stats?from=&to=&action=
func (h *Handlers) BorrowStats(c *fiber.Ctx) error {
	stats, err := h.stats(c)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Borrow stats", stats, nil)
}

// Export GET /api/v1/borrow-stats/export: same query, CSV attachment.
func (h *Handlers) Export(c *fiber.Ctx) error {
	stats, err := h.stats(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var buf bytes.Buffer
	if err := reports.WriteBorrowStatsCSV(&buf, stats); err != nil {
		return response.FromError(c, fmt.Errorf("render borrow stats csv: %w", err))
	}
	return response.Attachment(c, reports.ExportFilename, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handlers) stats(c *fiber.Ctx) (*reports.BorrowStats, error) {
	clk := h.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	today := clock.Today(clk, h.Location)
	from := clock.ParseDateOr(c.Query("from"), h.Location, today)
	to := clock.ParseDateOr(c.Query("to"), h.Location, today)
	return h.Service.BorrowStats(c.Context(), from, to, parseAction(c.Query("action")))
}

// parseAction defaults to borrow; "all" counts both directions.
func parseAction(s string) domain.BorrowAction {
	if s == "all" {
		return ""
	}
	a, err := domain.ParseBorrowAction(s)
	if err != nil {
		return domain.ActionBorrow
	}
	return a
}
