package instruments

import (
	"fmt"
	"math/rand"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/response"
)

// Jitter parameters for the simulated market. A listing call nudges each
// instrument's price with a small probability; the background ticker
// nudges every instrument on each tick with a smaller amplitude.
const (
	listJitterChance = 0.10
	listJitterMaxPct = 0.02
	tickJitterMaxPct = 0.005
)

// Service is the instrument registry: the fixed tradable symbol list and
// the current simulated price per symbol.
type Service struct {
	db *Database
}

// NewService creates a new instrument registry with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// Seed inserts the embedded instrument list if the registry is empty.
// Prices reset to seed values on every fresh database.
func (s *Service) Seed() error {
	count, err := s.db.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed, err := loadSeed()
	if err != nil {
		return err
	}

	if err := s.db.CreateInstruments(seed); err != nil {
		return err
	}

	log.Info().Int("instruments", len(seed)).Msg("seeded instrument registry")
	return nil
}

// List returns all instruments, applying a small-probability price jitter
// per instrument. When jitter fires the stored price is updated, so
// repeated listings see a drifting market.
func (s *Service) List() ([]types.Instrument, error) {
	instruments, err := s.db.ListInstruments()
	if err != nil {
		return nil, err
	}

	for i := range instruments {
		if rand.Float64() >= listJitterChance {
			continue
		}
		updated := jitterPrice(instruments[i].CurrentPrice, listJitterMaxPct)
		if err := s.db.UpdatePrice(instruments[i].Symbol, updated); err != nil {
			return nil, err
		}
		instruments[i].CurrentPrice = updated
	}

	return instruments, nil
}

// Get returns a single instrument by symbol.
func (s *Service) Get(symbol string) (*types.Instrument, error) {
	instrument, err := s.db.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}
	if instrument == nil {
		return nil, fmt.Errorf("%w: instrument %s", types.ErrNotFound, symbol)
	}
	return instrument, nil
}

// GetPrice returns the current simulated price for a symbol.
// Callers executing an order fetch the price once and reuse it so a
// single decision never sees two different prices.
func (s *Service) GetPrice(symbol string) (float64, error) {
	instrument, err := s.Get(symbol)
	if err != nil {
		return 0, err
	}
	return instrument.CurrentPrice, nil
}

// Exists reports whether the symbol is tradable. It never returns an
// error for an unknown symbol.
func (s *Service) Exists(symbol string) bool {
	instrument, err := s.db.GetBySymbol(symbol)
	return err == nil && instrument != nil
}

// SetPrice replaces the stored price for a symbol.
func (s *Service) SetPrice(symbol string, price float64) error {
	if price <= 0 {
		return types.ErrInvalidPrice
	}
	instrument, err := s.db.GetBySymbol(symbol)
	if err != nil {
		return err
	}
	if instrument == nil {
		return fmt.Errorf("%w: instrument %s", types.ErrNotFound, symbol)
	}
	return s.db.UpdatePrice(symbol, types.Round2(price))
}

// PerturbPrices applies a small random walk to every instrument and
// returns the updated list. Used by the market ticker.
func (s *Service) PerturbPrices() ([]types.Instrument, error) {
	instruments, err := s.db.ListInstruments()
	if err != nil {
		return nil, err
	}

	for i := range instruments {
		updated := jitterPrice(instruments[i].CurrentPrice, tickJitterMaxPct)
		if err := s.db.UpdatePrice(instruments[i].Symbol, updated); err != nil {
			return nil, err
		}
		instruments[i].CurrentPrice = updated
	}

	return instruments, nil
}

// jitterPrice nudges a price by a symmetric random fraction up to maxPct,
// keeping the result positive and rounded to 2 decimals.
func jitterPrice(price, maxPct float64) float64 {
	nudged := price * (1 + (rand.Float64()*2-1)*maxPct)
	nudged = types.Round2(nudged)
	if nudged <= 0 {
		return price
	}
	return nudged
}

// GinHandlers contains HTTP handlers for instrument endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for instrument endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListInstrumentsHandler handles GET requests for the tradable symbol list
func (h *GinHandlers) ListInstrumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		instruments, err := h.service.List()
		response.Handle(c, instruments, err)
	}
}

// GetInstrumentHandler handles GET requests for a single instrument
// URL parameter: symbol
func (h *GinHandlers) GetInstrumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")

		instrument, err := h.service.Get(symbol)
		response.Handle(c, instrument, err)
	}
}

// SetPriceHandler handles POST requests to replace an instrument price
// Requires internal authentication
// URL parameter: symbol
func (h *GinHandlers) SetPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")

		var request struct {
			Price float64 `json:"price" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		if err := h.service.SetPrice(symbol, request.Price); err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.SuccessMessage(c, "price updated", gin.H{
			"symbol": symbol,
			"price":  types.Round2(request.Price),
		})
	}
}
