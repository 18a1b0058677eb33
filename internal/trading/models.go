package trading

import (
	"time"

	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

// OrderRequest is a validated order-placement request from the HTTP layer.
type OrderRequest struct {
	Symbol    string          `json:"symbol" binding:"required"`
	Side      types.Side      `json:"side" binding:"required"`
	OrderType types.OrderType `json:"order_type" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	Price     float64         `json:"price"` // required for LIMIT orders
}

// IdempotencyRecord prevents duplicate order creation when a placement
// request is retried with the same Idempotency-Key header.
type IdempotencyRecord struct {
	gorm.Model
	IdempotencyKey string    `gorm:"uniqueIndex" json:"idempotency_key"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	ExpiresAt      time.Time `json:"expires_at"`
}
