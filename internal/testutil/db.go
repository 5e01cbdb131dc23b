// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"testing"

	"sfms-backend/internal/domain"
	"sfms-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite DB on a single connection.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedEquipment inserts one equipment row.
func SeedEquipment(t *testing.T, db *gorm.DB, name string, stock, total int) domain.Equipment {
	t.Helper()
	eq := domain.Equipment{Name: name, Stock: stock, Total: total}
	require.NoError(t, db.Create(&eq).Error)
	return eq
}

// Stock reads the current stock of one equipment row.
func Stock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var eq domain.Equipment
	require.NoError(t, db.First(&eq, id).Error)
	return eq.Stock
}
