// Package execution holds the pure order-execution decision logic. It has
// no storage side effects: callers fetch the current price once, ask
// whether an order can execute, and compute the fill price.
package execution

import (
	"math/rand"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

// MaxSlippage bounds the symmetric random slippage applied to MARKET
// fills, as a fraction of the current price.
const MaxSlippage = 0.001 // 0.1%

// CanExecute decides whether an order is executable at the current price.
// MARKET orders always execute. A LIMIT BUY executes once the market
// trades at or below the limit; a LIMIT SELL once it trades at or above.
func CanExecute(order *types.Order, currentPrice float64) bool {
	if order.OrderType == types.OrderTypeMarket {
		return true
	}

	switch order.Side {
	case types.SideBuy:
		return currentPrice <= order.LimitPrice
	case types.SideSell:
		return currentPrice >= order.LimitPrice
	default:
		return false
	}
}

// ExecutionPrice computes the price an executable order fills at.
// MARKET orders fill at the current price adjusted by random slippage.
// LIMIT orders fill at exactly the requested limit price, modelling a
// guaranteed fill at the limit. Orders fill completely or not at all.
func ExecutionPrice(order *types.Order, currentPrice float64) float64 {
	if order.OrderType == types.OrderTypeLimit {
		return types.Round2(order.LimitPrice)
	}

	slippage := (rand.Float64()*2 - 1) * MaxSlippage
	return types.Round2(currentPrice * (1 + slippage))
}
