package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanUser is a person who checks in at the front desk with email + scan code.
type ScanUser struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	DisplayName  string    `gorm:"column:display_name;size:255" json:"display_name"`
	ScanCodeHash string    `gorm:"column:scan_code_hash;size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ScanUser) TableName() string {
	return "scan_users"
}

// BeforeCreate: never insert zero UUID for primary key.
func (u *ScanUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
