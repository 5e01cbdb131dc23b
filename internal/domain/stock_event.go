package domain

import (
	"time"

	"gorm.io/datatypes"
)

// StockSource names what caused a stock change.
type StockSource string

const (
	SourceLedgerCreate StockSource = "ledger_create"
	SourceLedgerUpdate StockSource = "ledger_update"
	SourceLedgerDelete StockSource = "ledger_delete"
	SourceAdjustment   StockSource = "adjustment"
	SourceAdminUpsert  StockSource = "admin_upsert"
	SourceAdminPatch   StockSource = "admin_patch"
)

// StockEvent is the audit trail of every stock write.
type StockEvent struct {
	ID            uint           `gorm:"column:id;primaryKey" json:"id"`
	EquipmentID   *uint          `gorm:"column:equipment_id;index" json:"equipment_id"`
	EquipmentName string         `gorm:"column:equipment_name;size:255;not null" json:"equipment_name"`
	Source        StockSource    `gorm:"column:source;size:20;not null" json:"source"`
	Delta         int            `gorm:"column:delta;not null" json:"delta"`
	StockBefore   int            `gorm:"column:stock_before;not null" json:"stock_before"`
	StockAfter    int            `gorm:"column:stock_after;not null" json:"stock_after"`
	Detail        datatypes.JSON `gorm:"column:detail" json:"detail"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (StockEvent) TableName() string {
	return "stock_events"
}
