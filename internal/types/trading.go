package types

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType is the pricing style of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Valid reports whether the order type is one of the known values.
func (t OrderType) Valid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}

// OrderStatus is the lifecycle state of an order.
// Transitions are monotonic: NEW -> PLACED -> EXECUTED or NEW -> PLACED -> CANCELLED.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusExecuted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusNew:
		return next == OrderStatusPlaced
	case OrderStatusPlaced:
		return next == OrderStatusExecuted || next == OrderStatusCancelled
	default:
		return false
	}
}

// Instrument is a tradable symbol with its simulated market price.
// Instruments are seeded once at startup and never deleted; only the
// price is mutated, by the registry itself.
type Instrument struct {
	gorm.Model     `json:"-"`
	Symbol         string    `gorm:"uniqueIndex" json:"symbol"`
	Name           string    `json:"name"`
	Exchange       string    `json:"exchange"`
	InstrumentType string    `json:"instrument_type"`
	CurrentPrice   float64   `json:"current_price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Order is a client order. Executed fields are populated only once the
// order reaches EXECUTED.
type Order struct {
	gorm.Model       `json:"-"`
	OrderID          string      `gorm:"uniqueIndex" json:"order_id"`
	ClientID         string      `gorm:"index" json:"client_id"`
	Symbol           string      `json:"symbol"`
	Side             Side        `json:"side"`
	OrderType        OrderType   `json:"order_type"`
	Quantity         int64       `json:"quantity"`
	LimitPrice       float64     `json:"limit_price,omitempty"`
	Status           OrderStatus `json:"status"`
	ExecutedPrice    float64     `json:"executed_price,omitempty"`
	ExecutedQuantity int64       `json:"executed_quantity,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Trade is the immutable record of an executed order. Exactly one trade
// is created per executed order; trades are append-only.
type Trade struct {
	gorm.Model  `json:"-"`
	TradeID     string    `gorm:"uniqueIndex" json:"trade_id"`
	OrderID     string    `gorm:"index" json:"order_id"`
	ClientID    string    `gorm:"index" json:"client_id"`
	Symbol      string    `json:"symbol"`
	Side        Side      `json:"side"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	TotalAmount float64   `json:"total_amount"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// Holding is the stored per-client, per-symbol position aggregate.
// Quantity never goes negative; when it reaches zero the cost basis and
// average price reset to zero and the holding drops out of the visible
// portfolio.
type Holding struct {
	gorm.Model   `json:"-"`
	ClientID     string    `gorm:"index:idx_holdings_client_symbol,unique" json:"client_id"`
	Symbol       string    `gorm:"index:idx_holdings_client_symbol,unique" json:"symbol"`
	Quantity     int64     `json:"quantity"`
	CostBasis    float64   `json:"cost_basis"`
	AveragePrice float64   `json:"average_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HoldingView is a holding enriched with live market data at read time.
type HoldingView struct {
	Holding
	CurrentPrice  float64 `json:"current_price"`
	CurrentValue  float64 `json:"current_value"`
	Return        float64 `json:"return"`
	ReturnPercent float64 `json:"return_percent"`
}

// PortfolioSummary aggregates a client's holdings. It is derived on read,
// never stored.
type PortfolioSummary struct {
	TotalInvested       float64 `json:"total_invested"`
	TotalCurrentValue   float64 `json:"total_current_value"`
	TotalReturn         float64 `json:"total_return"`
	TotalReturnPercent  float64 `json:"total_return_percent"`
	Positions           int     `json:"positions"`
	ProfitablePositions int     `json:"profitable_positions"`
	LosingPositions     int     `json:"losing_positions"`
}

// Round2 rounds a monetary value to two decimal places. All prices and
// amounts leaving the core are rounded with this before serialization.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
