package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/database/migrations"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trading"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate schemas
	err = db.AutoMigrate(
		&types.Instrument{},
		&types.Order{},
		&types.Trade{},
		&types.Holding{},
		&trading.IdempotencyRecord{},
	)
	if err != nil {
		return nil, err
	}

	// Run index migrations
	if err := migrations.AddOrderIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.AddTradeIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
