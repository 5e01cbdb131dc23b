package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"sfms-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reconciler keeps Equipment.stock in step with the borrow ledger.
// Every method runs inside the caller's transaction; an error means the
// caller must roll back.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Result describes one applied stock change.
type Result struct {
	EquipmentID uint   `json:"equipment_id"`
	Equipment   string `json:"equipment"`
	Delta       int    `json:"delta"`
	StockBefore int    `json:"stock_before"`
	StockAfter  int    `json:"stock_after"`
}

// DeltaFor is the signed stock effect of a ledger row.
func DeltaFor(action domain.BorrowAction, qty int) int {
	if action == domain.ActionBorrow {
		return -qty
	}
	return qty
}

func recordDelta(rec domain.BorrowRecord) int {
	return DeltaFor(rec.Action, rec.Qty)
}

// ApplyDelta locks the equipment row and moves its stock by delta.
func (r *Reconciler) ApplyDelta(ctx context.Context, tx *gorm.DB, equipmentID uint, delta int) (int, error) {
	res, err := r.apply(ctx, tx, equipmentID, delta, domain.SourceAdjustment, nil)
	if err != nil {
		return 0, err
	}
	return res.StockAfter, nil
}

// OnLedgerCreate applies a freshly inserted ledger row. Rows without
// equipment return a nil Result.
func (r *Reconciler) OnLedgerCreate(ctx context.Context, tx *gorm.DB, rec domain.BorrowRecord) (*Result, error) {
	if rec.EquipmentID == nil {
		return nil, nil
	}
	res, err := r.apply(ctx, tx, *rec.EquipmentID, recordDelta(rec), domain.SourceLedgerCreate, &rec.ID)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// OnLedgerDelete reverses the effect of a ledger row that is being removed.
func (r *Reconciler) OnLedgerDelete(ctx context.Context, tx *gorm.DB, rec domain.BorrowRecord) (*Result, error) {
	if rec.EquipmentID == nil {
		return nil, nil
	}
	res, err := r.apply(ctx, tx, *rec.EquipmentID, -recordDelta(rec), domain.SourceLedgerDelete, &rec.ID)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// OnLedgerUpdate reconciles an edited ledger row. Edits on the same
// equipment collapse to one net adjustment. Edits that move the row to
// other equipment reverse the old side and apply the new side, locking
// rows in ascending id order.
func (r *Reconciler) OnLedgerUpdate(ctx context.Context, tx *gorm.DB, prev, next domain.BorrowRecord) ([]Result, error) {
	type side struct {
		id    uint
		delta int
	}
	var sides []side

	switch {
	case prev.EquipmentID != nil && next.EquipmentID != nil && *prev.EquipmentID == *next.EquipmentID:
		net := recordDelta(next) - recordDelta(prev)
		if net == 0 {
			return nil, nil
		}
		sides = append(sides, side{id: *next.EquipmentID, delta: net})
	default:
		if prev.EquipmentID != nil {
			sides = append(sides, side{id: *prev.EquipmentID, delta: -recordDelta(prev)})
		}
		if next.EquipmentID != nil {
			sides = append(sides, side{id: *next.EquipmentID, delta: recordDelta(next)})
		}
	}

	sort.Slice(sides, func(i, j int) bool { return sides[i].id < sides[j].id })

	results := make([]Result, 0, len(sides))
	for _, s := range sides {
		res, err := r.apply(ctx, tx, s.id, s.delta, domain.SourceLedgerUpdate, &next.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Reconciler) apply(ctx context.Context, tx *gorm.DB, equipmentID uint, delta int, source domain.StockSource, recordID *uint) (Result, error) {
	var eq domain.Equipment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&eq, equipmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, domain.ErrNotFound
		}
		return Result{}, fmt.Errorf("lock equipment %d: %w", equipmentID, err)
	}

	before := eq.Stock
	after := before + delta
	if after < 0 {
		return Result{}, &domain.InsufficientStockError{
			Equipment: eq.Name,
			Available: before,
			Requested: -delta,
		}
	}
	detail := map[string]interface{}{"requested_delta": delta}
	if eq.TracksTotal() && after > eq.Total {
		after = eq.Total
		detail["capped_at_total"] = eq.Total
	}
	if recordID != nil {
		detail["borrow_record_id"] = *recordID
	}

	if err := tx.WithContext(ctx).Model(&eq).Update("stock", after).Error; err != nil {
		return Result{}, fmt.Errorf("update stock for %s: %w", eq.Name, err)
	}
	if err := WriteEvent(ctx, tx, eq, source, before, after, detail); err != nil {
		return Result{}, err
	}

	return Result{
		EquipmentID: eq.ID,
		Equipment:   eq.Name,
		Delta:       after - before,
		StockBefore: before,
		StockAfter:  after,
	}, nil
}

// WriteEvent appends a stock audit row in the same transaction.
func WriteEvent(ctx context.Context, tx *gorm.DB, eq domain.Equipment, source domain.StockSource, before, after int, detail map[string]interface{}) error {
	var raw datatypes.JSON
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshal stock event detail: %w", err)
		}
		raw = datatypes.JSON(b)
	}
	id := eq.ID
	evt := domain.StockEvent{
		EquipmentID:   &id,
		EquipmentName: eq.Name,
		Source:        source,
		Delta:         after - before,
		StockBefore:   before,
		StockAfter:    after,
		Detail:        raw,
	}
	if err := tx.WithContext(ctx).Create(&evt).Error; err != nil {
		return fmt.Errorf("write stock event: %w", err)
	}
	return nil
}
