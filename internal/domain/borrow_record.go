package domain

import "time"

// BorrowAction is the direction of a ledger row.
type BorrowAction string

const (
	ActionBorrow BorrowAction = "borrow"
	ActionReturn BorrowAction = "return"
)

// ParseBorrowAction validates a raw action string.
func ParseBorrowAction(s string) (BorrowAction, error) {
	switch BorrowAction(s) {
	case ActionBorrow, ActionReturn:
		return BorrowAction(s), nil
	}
	return "", ErrInvalidAction
}

// BorrowRecord is one ledger row. EquipmentID is nulled when the equipment is deleted.
type BorrowRecord struct {
	ID          uint         `gorm:"column:id;primaryKey" json:"id"`
	EquipmentID *uint        `gorm:"column:equipment_id;index" json:"equipment_id"`
	Equipment   *Equipment   `gorm:"foreignKey:EquipmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Qty         int          `gorm:"column:qty;not null;default:1" json:"qty"`
	Action      BorrowAction `gorm:"column:action;size:10;not null" json:"action"`
	OccurredAt  time.Time    `gorm:"column:occurred_at;index;not null" json:"occurred_at"`
	BorrowerID  *string      `gorm:"column:borrower_id;size:64;index" json:"borrower_id"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}
