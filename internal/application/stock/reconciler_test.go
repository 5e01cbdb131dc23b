package stock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sfms-backend/internal/domain"
	"sfms-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func TestDeltaFor(t *testing.T) {
	assert.Equal(t, -3, DeltaFor(domain.ActionBorrow, 3))
	assert.Equal(t, 2, DeltaFor(domain.ActionReturn, 2))
}

func TestApplyDelta_RejectsNegative(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Basketball", 2, 2)
	r := NewReconciler()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := r.ApplyDelta(context.Background(), tx, eq.ID, -3)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "Basketball", ise.Equipment)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)

	assert.Equal(t, 2, testutil.Stock(t, db, eq.ID))
	var events int64
	db.Model(&domain.StockEvent{}).Count(&events)
	assert.Equal(t, int64(0), events)
}

func TestApplyDelta_CapsAtTotal(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Football", 9, 10)
	r := NewReconciler()

	var got int
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = r.ApplyDelta(context.Background(), tx, eq.ID, 5)
		return err
	}))
	assert.Equal(t, 10, got)
	assert.Equal(t, 10, testutil.Stock(t, db, eq.ID))

	var evt domain.StockEvent
	require.NoError(t, db.First(&evt).Error)
	assert.Equal(t, 9, evt.StockBefore)
	assert.Equal(t, 10, evt.StockAfter)
	assert.Equal(t, 1, evt.Delta)
	assert.Contains(t, string(evt.Detail), "capped_at_total")
}

func TestApplyDelta_UntrackedTotalIsNotCapped(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Cones", 4, 0)
	r := NewReconciler()

	var got int
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = r.ApplyDelta(context.Background(), tx, eq.ID, 6)
		return err
	}))
	assert.Equal(t, 10, got)
}

func TestApplyDelta_UnknownEquipment(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewReconciler()
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := r.ApplyDelta(context.Background(), tx, 999, -1)
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func createRecord(t *testing.T, db *gorm.DB, r *Reconciler, rec *domain.BorrowRecord) error {
	t.Helper()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		_, err := r.OnLedgerCreate(context.Background(), tx, *rec)
		return err
	})
}

// ledgerSum is initial + Σreturn − Σborrow over rows referencing id.
func ledgerSum(t *testing.T, db *gorm.DB, id uint, initial int) int {
	t.Helper()
	var rows []domain.BorrowRecord
	require.NoError(t, db.Where("equipment_id = ?", id).Find(&rows).Error)
	sum := initial
	for _, row := range rows {
		sum += DeltaFor(row.Action, row.Qty)
	}
	return sum
}

func TestLedgerLifecycle_MatchesLedgerSum(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Shuttlecock", 20, 20)
	r := NewReconciler()

	rec := domain.BorrowRecord{EquipmentID: uintPtr(eq.ID), Qty: 4, Action: domain.ActionBorrow}
	require.NoError(t, createRecord(t, db, r, &rec))
	assert.Equal(t, 16, testutil.Stock(t, db, eq.ID))
	assert.Equal(t, ledgerSum(t, db, eq.ID, 20), testutil.Stock(t, db, eq.ID))

	ret := domain.BorrowRecord{EquipmentID: uintPtr(eq.ID), Qty: 1, Action: domain.ActionReturn}
	require.NoError(t, createRecord(t, db, r, &ret))
	assert.Equal(t, 17, testutil.Stock(t, db, eq.ID))
	assert.Equal(t, ledgerSum(t, db, eq.ID, 20), testutil.Stock(t, db, eq.ID))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.OnLedgerDelete(context.Background(), tx, rec); err != nil {
			return err
		}
		return tx.Delete(&domain.BorrowRecord{}, rec.ID).Error
	}))
	// Only the return row remains, stock is capped at total.
	assert.Equal(t, 20, testutil.Stock(t, db, eq.ID))

	var sources []string
	db.Model(&domain.StockEvent{}).Order("id").Pluck("source", &sources)
	assert.Equal(t, []string{"ledger_create", "ledger_create", "ledger_delete"}, sources)
}

func TestOnLedgerUpdate_SameEquipmentNetsDelta(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Tennis Ball", 13, 13)
	r := NewReconciler()

	rec := domain.BorrowRecord{EquipmentID: uintPtr(eq.ID), Qty: 3, Action: domain.ActionBorrow}
	require.NoError(t, createRecord(t, db, r, &rec))
	assert.Equal(t, 10, testutil.Stock(t, db, eq.ID))

	next := rec
	next.Qty = 5
	var results []Result
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		results, err = r.OnLedgerUpdate(context.Background(), tx, rec, next)
		if err != nil {
			return err
		}
		return tx.Save(&next).Error
	}))
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].StockBefore)
	assert.Equal(t, 8, results[0].StockAfter)
	assert.Equal(t, 8, testutil.Stock(t, db, eq.ID))
	assert.Equal(t, ledgerSum(t, db, eq.ID, 13), testutil.Stock(t, db, eq.ID))
}

func TestOnLedgerUpdate_NoChangeIsNoop(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Net", 5, 5)
	r := NewReconciler()
	rec := domain.BorrowRecord{ID: 1, EquipmentID: uintPtr(eq.ID), Qty: 2, Action: domain.ActionBorrow}

	results, err := r.OnLedgerUpdate(context.Background(), db, rec, rec)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 5, testutil.Stock(t, db, eq.ID))
}

func TestOnLedgerUpdate_MovesBetweenEquipment(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.SeedEquipment(t, db, "Racket A", 5, 5)
	b := testutil.SeedEquipment(t, db, "Racket B", 5, 5)
	r := NewReconciler()

	rec := domain.BorrowRecord{EquipmentID: uintPtr(a.ID), Qty: 2, Action: domain.ActionBorrow}
	require.NoError(t, createRecord(t, db, r, &rec))
	assert.Equal(t, 3, testutil.Stock(t, db, a.ID))

	next := rec
	next.EquipmentID = uintPtr(b.ID)
	var results []Result
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		results, err = r.OnLedgerUpdate(context.Background(), tx, rec, next)
		if err != nil {
			return err
		}
		return tx.Save(&next).Error
	}))
	require.Len(t, results, 2)
	assert.Equal(t, a.ID, results[0].EquipmentID)
	assert.Equal(t, b.ID, results[1].EquipmentID)
	assert.Equal(t, 5, testutil.Stock(t, db, a.ID))
	assert.Equal(t, 3, testutil.Stock(t, db, b.ID))
}

func TestOnLedgerUpdate_MoveRollsBackBothSides(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.SeedEquipment(t, db, "Mat A", 5, 5)
	b := testutil.SeedEquipment(t, db, "Mat B", 1, 1)
	r := NewReconciler()

	rec := domain.BorrowRecord{EquipmentID: uintPtr(a.ID), Qty: 2, Action: domain.ActionBorrow}
	require.NoError(t, createRecord(t, db, r, &rec))

	next := rec
	next.EquipmentID = uintPtr(b.ID)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := r.OnLedgerUpdate(context.Background(), tx, rec, next)
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 3, testutil.Stock(t, db, a.ID))
	assert.Equal(t, 1, testutil.Stock(t, db, b.ID))
}

func TestOnLedgerUpdate_NilEquipmentSideSkipped(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Whistle", 4, 4)
	r := NewReconciler()

	prev := domain.BorrowRecord{ID: 7, Qty: 1, Action: domain.ActionBorrow}
	next := prev
	next.EquipmentID = uintPtr(eq.ID)
	results, err := r.OnLedgerUpdate(context.Background(), db, prev, next)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, testutil.Stock(t, db, eq.ID))

	res, err := r.OnLedgerCreate(context.Background(), db, domain.BorrowRecord{Qty: 1, Action: domain.ActionBorrow})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestApplyDelta_ConcurrentLastUnit(t *testing.T) {
	db := testutil.NewDB(t)
	eq := testutil.SeedEquipment(t, db, "Last Paddle", 1, 1)
	r := NewReconciler()

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, refusals := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				_, err := r.ApplyDelta(context.Background(), tx, eq.ID, -1)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				refusals++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, refusals)
	assert.Equal(t, 0, testutil.Stock(t, db, eq.ID))
}
