package types

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusNew, OrderStatusPlaced, true},
		{OrderStatusNew, OrderStatusExecuted, false},
		{OrderStatusNew, OrderStatusCancelled, false},
		{OrderStatusPlaced, OrderStatusExecuted, true},
		{OrderStatusPlaced, OrderStatusCancelled, true},
		{OrderStatusPlaced, OrderStatusNew, false},
		{OrderStatusExecuted, OrderStatusCancelled, false},
		{OrderStatusExecuted, OrderStatusPlaced, false},
		{OrderStatusCancelled, OrderStatusExecuted, false},
		{OrderStatusCancelled, OrderStatusPlaced, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if OrderStatusNew.Terminal() {
		t.Error("NEW should not be terminal")
	}
	if OrderStatusPlaced.Terminal() {
		t.Error("PLACED should not be terminal")
	}
	if !OrderStatusExecuted.Terminal() {
		t.Error("EXECUTED should be terminal")
	}
	if !OrderStatusCancelled.Terminal() {
		t.Error("CANCELLED should be terminal")
	}
}

func TestSideValid(t *testing.T) {
	if !SideBuy.Valid() || !SideSell.Valid() {
		t.Error("BUY and SELL should be valid sides")
	}
	if Side("HOLD").Valid() {
		t.Error("HOLD should not be a valid side")
	}
	if Side("buy").Valid() {
		t.Error("side values are case sensitive")
	}
}

func TestOrderTypeValid(t *testing.T) {
	if !OrderTypeMarket.Valid() || !OrderTypeLimit.Valid() {
		t.Error("MARKET and LIMIT should be valid order types")
	}
	if OrderType("STOP").Valid() {
		t.Error("STOP should not be a valid order type")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2450.754, 2450.75},
		{2450.756, 2450.76},
		{0.004, 0},
		{0.006, 0.01},
		{100, 100},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
