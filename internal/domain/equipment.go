package domain

import "time"

// UnknownEquipmentName labels ledger rows whose equipment was deleted.
const UnknownEquipmentName = "ไม่ระบุ"

// Equipment is one inventory line. Total is the largest capacity ever
// configured; zero means capacity is not tracked.
type Equipment struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`
	Total     int       `gorm:"column:total;not null;default:0" json:"total"`
	Stock     int       `gorm:"column:stock;not null;default:0" json:"stock"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipments"
}

// TracksTotal reports whether stock is capped by Total.
func (e Equipment) TracksTotal() bool {
	return e.Total > 0
}
