package borrowing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sfms-backend/internal/application/stock"
	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"

	"gorm.io/gorm"
)

// ListLimit caps the staff ledger listing.
const ListLimit = 200

type Service struct {
	DB         *gorm.DB
	Reconciler *stock.Reconciler
	Clock      clock.Clock
}

// Outcome is what borrow and return report back to the caller.
type Outcome struct {
	Record    domain.BorrowRecord `json:"record"`
	Equipment string              `json:"equipment"`
	Stock     int                 `json:"stock"`
}

// UpdateInput holds the editable fields of a ledger row.
type UpdateInput struct {
	Equipment  *string
	Qty        *int
	Action     *domain.BorrowAction
	OccurredAt *time.Time
	BorrowerID *string
}

// RecordView is a ledger row joined with its equipment name.
type RecordView struct {
	ID         uint                `json:"id"`
	Equipment  string              `json:"equipment"`
	Qty        int                 `json:"qty"`
	Action     domain.BorrowAction `json:"action"`
	OccurredAt time.Time           `json:"occurred_at"`
	BorrowerID *string             `json:"borrower_id"`
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) Borrow(ctx context.Context, equipment string, qty int, borrowerID *string) (*Outcome, error) {
	return s.record(ctx, domain.ActionBorrow, equipment, qty, borrowerID)
}

func (s *Service) Return(ctx context.Context, equipment string, qty int, borrowerID *string) (*Outcome, error) {
	return s.record(ctx, domain.ActionReturn, equipment, qty, borrowerID)
}

func (s *Service) record(ctx context.Context, action domain.BorrowAction, equipment string, qty int, borrowerID *string) (*Outcome, error) {
	equipment = strings.TrimSpace(equipment)
	if equipment == "" {
		return nil, domain.ErrEquipmentNameRequired
	}
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var out Outcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eq, err := findEquipment(tx, equipment)
		if err != nil {
			return err
		}
		rec := domain.BorrowRecord{
			EquipmentID: &eq.ID,
			Qty:         qty,
			Action:      action,
			OccurredAt:  s.now(),
			BorrowerID:  normalizeBorrower(borrowerID),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert borrow record: %w", err)
		}
		res, err := s.Reconciler.OnLedgerCreate(ctx, tx, rec)
		if err != nil {
			return err
		}
		out = Outcome{Record: rec, Equipment: eq.Name, Stock: res.StockAfter}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord edits a ledger row and reconciles stock for both the old and
// the new version in one transaction.
func (s *Service) UpdateRecord(ctx context.Context, id uint, in UpdateInput) (*domain.BorrowRecord, []stock.Result, error) {
	if in.Qty != nil && *in.Qty <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}

	var (
		out     domain.BorrowRecord
		results []stock.Result
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev domain.BorrowRecord
		if err := tx.First(&prev, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		next := prev
		if in.Equipment != nil {
			eq, err := findEquipment(tx, *in.Equipment)
			if err != nil {
				return err
			}
			next.EquipmentID = &eq.ID
		}
		if in.Qty != nil {
			next.Qty = *in.Qty
		}
		if in.Action != nil {
			next.Action = *in.Action
		}
		if in.OccurredAt != nil {
			next.OccurredAt = in.OccurredAt.UTC()
		}
		if in.BorrowerID != nil {
			next.BorrowerID = normalizeBorrower(in.BorrowerID)
		}

		var err error
		results, err = s.Reconciler.OnLedgerUpdate(ctx, tx, prev, next)
		if err != nil {
			return err
		}
		if err := tx.Model(&next).Select("equipment_id", "qty", "action", "occurred_at", "borrower_id").Updates(&next).Error; err != nil {
			return fmt.Errorf("update borrow record: %w", err)
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, results, nil
}

// DeleteRecord removes a ledger row and reverses its stock effect.
func (s *Service) DeleteRecord(ctx context.Context, id uint) (*stock.Result, error) {
	var res *stock.Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.BorrowRecord
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecordNotFound
			}
			return err
		}
		var err error
		res, err = s.Reconciler.OnLedgerDelete(ctx, tx, rec)
		if err != nil {
			return err
		}
		return tx.Delete(&domain.BorrowRecord{}, rec.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListRecords returns the newest ledger rows, optionally for one borrower.
func (s *Service) ListRecords(ctx context.Context, borrower string) ([]RecordView, error) {
	q := s.DB.WithContext(ctx).Preload("Equipment").Order("occurred_at DESC").Order("id DESC").Limit(ListLimit)
	if b := strings.TrimSpace(borrower); b != "" {
		q = q.Where("borrower_id = ?", b)
	}
	var rows []domain.BorrowRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]RecordView, 0, len(rows))
	for _, r := range rows {
		name := domain.UnknownEquipmentName
		if r.Equipment != nil {
			name = r.Equipment.Name
		}
		out = append(out, RecordView{
			ID:         r.ID,
			Equipment:  name,
			Qty:        r.Qty,
			Action:     r.Action,
			OccurredAt: r.OccurredAt,
			BorrowerID: r.BorrowerID,
		})
	}
	return out, nil
}

func findEquipment(tx *gorm.DB, name string) (*domain.Equipment, error) {
	var eq domain.Equipment
	if err := tx.Where("name = ?", strings.TrimSpace(name)).First(&eq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func normalizeBorrower(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
