package trades

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.Trade{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewService(db), db
}

func executedOrder(clientID string) *types.Order {
	return &types.Order{
		OrderID:   "ORD_" + uuid.New().String(),
		ClientID:  clientID,
		Symbol:    "RELIANCE",
		Side:      types.SideBuy,
		OrderType: types.OrderTypeMarket,
		Quantity:  10,
		Status:    types.OrderStatusExecuted,
	}
}

func TestRecord(t *testing.T) {
	s, db := newTestService(t)

	order := executedOrder("demo-client")
	trade, err := s.Record(db, order, 2450.753)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if !strings.HasPrefix(trade.TradeID, "TRD_") {
		t.Errorf("trade ID %q missing TRD_ prefix", trade.TradeID)
	}
	if trade.OrderID != order.OrderID {
		t.Errorf("got order ID %s, want %s", trade.OrderID, order.OrderID)
	}
	if trade.Price != 2450.75 {
		t.Errorf("got price %v, want 2450.75 (rounded)", trade.Price)
	}
	if trade.TotalAmount != 24507.53 {
		t.Errorf("got total amount %v, want 24507.53", trade.TotalAmount)
	}
	if trade.ExecutedAt.IsZero() {
		t.Error("executed_at not set")
	}

	// The trade must be readable back by its owner.
	got, err := s.GetTrade(trade.TradeID, "demo-client")
	if err != nil {
		t.Fatalf("get trade failed: %v", err)
	}
	if got.TradeID != trade.TradeID {
		t.Errorf("got trade %s, want %s", got.TradeID, trade.TradeID)
	}
}

func TestGetTrade_Scoping(t *testing.T) {
	s, db := newTestService(t)

	trade, err := s.Record(db, executedOrder("demo-client"), 100)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if _, err := s.GetTrade(trade.TradeID, "other-client"); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign client, got %v", err)
	}
	if _, err := s.GetTrade("TRD_missing", "demo-client"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown trade, got %v", err)
	}
}

func TestGetClientTrades(t *testing.T) {
	s, db := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := s.Record(db, executedOrder("demo-client"), float64(100+i)); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if _, err := s.Record(db, executedOrder("other-client"), 100); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	mine, err := s.GetClientTrades("demo-client")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("got %d trades, want 3", len(mine))
	}
	for _, trade := range mine {
		if trade.ClientID != "demo-client" {
			t.Errorf("foreign trade %s in client listing", trade.TradeID)
		}
	}
}
