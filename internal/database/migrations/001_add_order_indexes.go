package migrations

import (
	"gorm.io/gorm"
)

// AddOrderIndexes adds indexes used by the order lifecycle queries
func AddOrderIndexes(db *gorm.DB) error {
	// Using raw SQL for index creation to have more control over index types
	indexes := []string{
		// Index for status filtering (pending-order sweep)
		`CREATE INDEX IF NOT EXISTS idx_orders_status
		 ON orders(status)`,

		// Composite index for per-client order listings
		`CREATE INDEX IF NOT EXISTS idx_orders_client_created
		 ON orders(client_id, created_at)`,

		// Composite index for symbol and status (sweep by symbol)
		`CREATE INDEX IF NOT EXISTS idx_orders_symbol_status
		 ON orders(symbol, status)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
