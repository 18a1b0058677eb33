package instruments

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"pgregory.net/rapid"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

// newTestService creates a registry backed by a fresh in-memory database.
func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.Instrument{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewService(db)
}

func TestSeed(t *testing.T) {
	s := newTestService(t)

	if err := s.Seed(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	instruments, err := s.db.ListInstruments()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(instruments) == 0 {
		t.Fatal("expected seeded instruments, got none")
	}

	for _, inst := range instruments {
		if inst.Symbol == "" {
			t.Error("seeded instrument with empty symbol")
		}
		if inst.CurrentPrice <= 0 {
			t.Errorf("seeded instrument %s with non-positive price %v", inst.Symbol, inst.CurrentPrice)
		}
	}

	// Seeding again must not duplicate.
	if err := s.Seed(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	again, err := s.db.ListInstruments()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(again) != len(instruments) {
		t.Errorf("second seed changed instrument count: %d -> %d", len(instruments), len(again))
	}
}

func TestGetAndExists(t *testing.T) {
	s := newTestService(t)
	if err := s.Seed(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	inst, err := s.Get("RELIANCE")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if inst.Symbol != "RELIANCE" {
		t.Errorf("got symbol %s, want RELIANCE", inst.Symbol)
	}
	if inst.CurrentPrice != 2450.75 {
		t.Errorf("got seed price %v, want 2450.75", inst.CurrentPrice)
	}

	if _, err := s.Get("NOSUCH"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}

	if !s.Exists("RELIANCE") {
		t.Error("RELIANCE should exist")
	}
	if s.Exists("NOSUCH") {
		t.Error("NOSUCH should not exist")
	}
}

func TestGetPrice(t *testing.T) {
	s := newTestService(t)
	if err := s.Seed(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	price, err := s.GetPrice("TCS")
	if err != nil {
		t.Fatalf("get price failed: %v", err)
	}
	if price != 3890.20 {
		t.Errorf("got price %v, want 3890.20", price)
	}

	if _, err := s.GetPrice("NOSUCH"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestSetPrice(t *testing.T) {
	s := newTestService(t)
	if err := s.Seed(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := s.SetPrice("RELIANCE", 2500.123); err != nil {
		t.Fatalf("set price failed: %v", err)
	}
	price, err := s.GetPrice("RELIANCE")
	if err != nil {
		t.Fatalf("get price failed: %v", err)
	}
	if price != 2500.12 {
		t.Errorf("got price %v, want 2500.12 (rounded)", price)
	}

	if err := s.SetPrice("RELIANCE", 0); !errors.Is(err, types.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice for zero price, got %v", err)
	}
	if err := s.SetPrice("RELIANCE", -10); !errors.Is(err, types.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice for negative price, got %v", err)
	}
	if err := s.SetPrice("NOSUCH", 100); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestPerturbPrices(t *testing.T) {
	s := newTestService(t)
	if err := s.Seed(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	before, err := s.db.ListInstruments()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	prices := make(map[string]float64, len(before))
	for _, inst := range before {
		prices[inst.Symbol] = inst.CurrentPrice
	}

	after, err := s.PerturbPrices()
	if err != nil {
		t.Fatalf("perturb failed: %v", err)
	}

	for _, inst := range after {
		old := prices[inst.Symbol]
		lower := old * (1 - tickJitterMaxPct)
		upper := old * (1 + tickJitterMaxPct)
		if inst.CurrentPrice < lower-0.01 || inst.CurrentPrice > upper+0.01 {
			t.Errorf("%s perturbed from %v to %v, outside [%v, %v]",
				inst.Symbol, old, inst.CurrentPrice, lower, upper)
		}
		if inst.CurrentPrice <= 0 {
			t.Errorf("%s perturbed to non-positive price %v", inst.Symbol, inst.CurrentPrice)
		}
	}
}

func TestProperty_JitterBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Float64Range(0.01, 100000).Draw(t, "price")
		maxPct := rapid.Float64Range(0, 0.05).Draw(t, "maxPct")

		nudged := jitterPrice(price, maxPct)

		if nudged <= 0 {
			t.Fatalf("jitter produced non-positive price %v from %v", nudged, price)
		}
		lower := price*(1-maxPct) - 0.01
		upper := price*(1+maxPct) + 0.01
		// A nudge that would round to zero or below keeps the old price.
		if nudged != price && (nudged < lower || nudged > upper) {
			t.Fatalf("jitter moved %v to %v, outside [%v, %v]", price, nudged, lower, upper)
		}
	})
}
