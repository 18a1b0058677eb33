package migrations

import (
	"gorm.io/gorm"
)

// AddTradeIndexes adds indexes used by trade history and portfolio queries
func AddTradeIndexes(db *gorm.DB) error {
	indexes := []string{
		// Composite index for per-client trade history, newest first
		`CREATE INDEX IF NOT EXISTS idx_trades_client_executed
		 ON trades(client_id, executed_at)`,

		// Index for symbol lookups
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol
		 ON trades(symbol)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
