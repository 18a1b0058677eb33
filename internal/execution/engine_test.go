package execution

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

func newOrder(side types.Side, orderType types.OrderType, limitPrice float64) *types.Order {
	return &types.Order{
		OrderID:    "ORD_test",
		ClientID:   "demo-client",
		Symbol:     "RELIANCE",
		Side:       side,
		OrderType:  orderType,
		Quantity:   10,
		LimitPrice: limitPrice,
		Status:     types.OrderStatusPlaced,
	}
}

func TestCanExecute(t *testing.T) {
	tests := []struct {
		name         string
		side         types.Side
		orderType    types.OrderType
		limitPrice   float64
		currentPrice float64
		want         bool
	}{
		{"market buy always executes", types.SideBuy, types.OrderTypeMarket, 0, 2450.75, true},
		{"market sell always executes", types.SideSell, types.OrderTypeMarket, 0, 2450.75, true},
		{"limit buy below limit", types.SideBuy, types.OrderTypeLimit, 2500, 2450.75, true},
		{"limit buy at limit", types.SideBuy, types.OrderTypeLimit, 2450.75, 2450.75, true},
		{"limit buy above limit", types.SideBuy, types.OrderTypeLimit, 2400, 2450.75, false},
		{"limit sell above limit", types.SideSell, types.OrderTypeLimit, 2400, 2450.75, true},
		{"limit sell at limit", types.SideSell, types.OrderTypeLimit, 2450.75, 2450.75, true},
		{"limit sell below limit", types.SideSell, types.OrderTypeLimit, 2500, 2450.75, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newOrder(tt.side, tt.orderType, tt.limitPrice)
			if got := CanExecute(order, tt.currentPrice); got != tt.want {
				t.Errorf("CanExecute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanExecute_UnknownSideLimit(t *testing.T) {
	order := newOrder(types.Side("HOLD"), types.OrderTypeLimit, 2450.75)
	if CanExecute(order, 2450.75) {
		t.Error("limit order with unknown side should not execute")
	}
}

func TestExecutionPrice_LimitFillsAtLimit(t *testing.T) {
	order := newOrder(types.SideBuy, types.OrderTypeLimit, 2400.50)
	if got := ExecutionPrice(order, 2390); got != 2400.50 {
		t.Errorf("limit order filled at %v, want exactly 2400.50", got)
	}
}

func TestExecutionPrice_MarketWithinSlippage(t *testing.T) {
	order := newOrder(types.SideBuy, types.OrderTypeMarket, 0)
	currentPrice := 2450.75

	for i := 0; i < 1000; i++ {
		price := ExecutionPrice(order, currentPrice)
		lower := currentPrice * (1 - MaxSlippage)
		upper := currentPrice * (1 + MaxSlippage)
		// Rounding to 2 decimals can push the fill just past the raw bound.
		if price < lower-0.01 || price > upper+0.01 {
			t.Fatalf("market fill %v outside slippage bounds [%v, %v]", price, lower, upper)
		}
	}
}

func TestProperty_MarketSlippageBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		currentPrice := rapid.Float64Range(0.01, 100000).Draw(t, "currentPrice")
		order := newOrder(types.SideBuy, types.OrderTypeMarket, 0)

		price := ExecutionPrice(order, currentPrice)

		lower := currentPrice*(1-MaxSlippage) - 0.01
		upper := currentPrice*(1+MaxSlippage) + 0.01
		if price < lower || price > upper {
			t.Fatalf("fill %v outside [%v, %v] for current price %v", price, lower, upper, currentPrice)
		}
	})
}

func TestProperty_ExecutableLimitAlwaysFillsAtLimit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.Float64Range(1, 10000).Draw(t, "limit")
		current := rapid.Float64Range(1, 10000).Draw(t, "current")
		side := types.SideBuy
		if rapid.Bool().Draw(t, "sell") {
			side = types.SideSell
		}

		order := newOrder(side, types.OrderTypeLimit, limit)
		if !CanExecute(order, current) {
			return
		}
		if got := ExecutionPrice(order, current); got != types.Round2(limit) {
			t.Fatalf("executable limit order filled at %v, want %v", got, types.Round2(limit))
		}
	})
}
