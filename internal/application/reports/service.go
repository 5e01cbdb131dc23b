package reports

import (
	"context"
	"sort"
	"time"

	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Location *time.Location
}

// StatRow is one equipment line of a borrow report.
type StatRow struct {
	Equipment string `json:"equipment"`
	Qty       int    `json:"qty"`
}

// BorrowStats is the aggregated borrow/return report for a date range.
type BorrowStats struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Action domain.BorrowAction `json:"action"`
	Rows   []StatRow           `json:"rows"`
	Total  int                 `json:"total"`
}

type statScan struct {
	Name *string
	Qty  int
}

// BorrowStats sums ledger qty per equipment over the local dates [from, to].
// An empty action counts both directions. Rows are ordered by qty desc, then
// name asc.
func (s *Service) BorrowStats(ctx context.Context, from, to time.Time, action domain.BorrowAction) (*BorrowStats, error) {
	start := clock.StartOfDay(from.In(s.loc()), s.loc())
	end := clock.StartOfDay(to.In(s.loc()), s.loc()).AddDate(0, 0, 1)

	q := s.DB.WithContext(ctx).
		Table("borrow_records").
		Select("equipments.name AS name, SUM(borrow_records.qty) AS qty").
		Joins("LEFT JOIN equipments ON equipments.id = borrow_records.equipment_id").
		Where("borrow_records.occurred_at >= ? AND borrow_records.occurred_at < ?", start, end).
		Group("equipments.name")
	if action == domain.ActionBorrow || action == domain.ActionReturn {
		q = q.Where("borrow_records.action = ?", action)
	}

	var scanned []statScan
	if err := q.Scan(&scanned).Error; err != nil {
		return nil, err
	}

	merged := make(map[string]int, len(scanned))
	for _, r := range scanned {
		name := domain.UnknownEquipmentName
		if r.Name != nil && *r.Name != "" {
			name = *r.Name
		}
		merged[name] += r.Qty
	}

	out := &BorrowStats{
		From:   clock.LocalDate(from, s.loc()),
		To:     clock.LocalDate(to, s.loc()),
		Action: action,
		Rows:   make([]StatRow, 0, len(merged)),
	}
	for name, qty := range merged {
		out.Rows = append(out.Rows, StatRow{Equipment: name, Qty: qty})
		out.Total += qty
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Qty != out.Rows[j].Qty {
			return out.Rows[i].Qty > out.Rows[j].Qty
		}
		return out.Rows[i].Equipment < out.Rows[j].Equipment
	})
	return out, nil
}

func (s *Service) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
