package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("equipment not found")
	ErrRecordNotFound        = errors.New("borrow record not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidFacility       = errors.New("invalid facility")
	ErrEquipmentNameRequired = errors.New("equipment name is required")
	ErrDuplicateEquipment    = errors.New("equipment name already exists")
	ErrNotCheckedIn          = errors.New("not checked in")
	ErrPoolLocked            = errors.New("pool checkout required")
	ErrInvalidScanCode       = errors.New("invalid email or scan code")
)

// InsufficientStockError carries the numbers a caller shows when a borrow is refused.
type InsufficientStockError struct {
	Equipment string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Equipment, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
