// Package portfolio maintains per-symbol holding aggregates: quantity held
// and weighted-average cost. Current value and return are derived against
// the instrument registry at read time, never stored.
package portfolio

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/instruments"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/response"
)

// Service is the portfolio ledger.
type Service struct {
	db       *Database
	registry *instruments.Service
}

// NewService creates a new portfolio ledger with the given database
// connection and instrument registry.
func NewService(gormDB *gorm.DB, registry *instruments.Service) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		registry: registry,
	}
}

// ApplyFill applies an executed fill to the client's holding and returns
// the updated aggregate. It writes through tx so the caller can commit it
// atomically with the order and trade mutations.
//
// BUY adds quantity and cost basis, recomputing the weighted average.
// SELL reduces quantity at the unchanged average price; realized gain or
// loss is not separately tracked. A SELL that would drive the quantity
// negative fails with ErrInsufficientHoldings and mutates nothing.
func (s *Service) ApplyFill(tx *gorm.DB, clientID, symbol string, quantity int64, price float64, side types.Side) (*types.Holding, error) {
	db := NewDatabase(tx)

	holding, err := db.GetHolding(clientID, symbol)
	if err != nil {
		return nil, err
	}
	if holding == nil {
		holding = &types.Holding{
			ClientID: clientID,
			Symbol:   symbol,
		}
	}

	switch side {
	case types.SideBuy:
		holding.CostBasis = types.Round2(holding.CostBasis + float64(quantity)*price)
		holding.Quantity += quantity
		holding.AveragePrice = types.Round2(holding.CostBasis / float64(holding.Quantity))

	case types.SideSell:
		if holding.Quantity < quantity {
			return nil, types.ErrInsufficientHoldings
		}
		holding.Quantity -= quantity
		if holding.Quantity == 0 {
			holding.CostBasis = 0
			holding.AveragePrice = 0
		} else {
			// Average price is unchanged by a sell; the basis shrinks
			// in proportion to the shares that remain.
			holding.CostBasis = types.Round2(holding.AveragePrice * float64(holding.Quantity))
		}
	}

	if err := db.SaveHolding(holding); err != nil {
		return nil, err
	}

	log.Debug().
		Str("client_id", clientID).
		Str("symbol", symbol).
		Str("side", string(side)).
		Int64("quantity", holding.Quantity).
		Float64("average_price", holding.AveragePrice).
		Msg("applied fill to holding")

	return holding, nil
}

// GetHoldings returns the client's visible holdings (quantity > 0), each
// enriched with the current price, value and unrealized return.
func (s *Service) GetHoldings(clientID string) ([]types.HoldingView, error) {
	holdings, err := s.db.GetClientHoldings(clientID)
	if err != nil {
		return nil, err
	}

	views := make([]types.HoldingView, 0, len(holdings))
	for _, h := range holdings {
		currentPrice, err := s.registry.GetPrice(h.Symbol)
		if err != nil {
			return nil, err
		}

		view := types.HoldingView{
			Holding:      h,
			CurrentPrice: currentPrice,
			CurrentValue: types.Round2(float64(h.Quantity) * currentPrice),
		}
		view.Return = types.Round2(view.CurrentValue - h.CostBasis)
		if h.CostBasis > 0 {
			view.ReturnPercent = types.Round2(view.Return / h.CostBasis * 100)
		}
		views = append(views, view)
	}

	return views, nil
}

// Summary folds the client's holdings into an aggregate view.
func (s *Service) Summary(clientID string) (*types.PortfolioSummary, error) {
	views, err := s.GetHoldings(clientID)
	if err != nil {
		return nil, err
	}

	summary := &types.PortfolioSummary{
		Positions: len(views),
	}
	for _, v := range views {
		summary.TotalInvested += v.CostBasis
		summary.TotalCurrentValue += v.CurrentValue
		switch {
		case v.Return > 0:
			summary.ProfitablePositions++
		case v.Return < 0:
			summary.LosingPositions++
		}
	}

	summary.TotalInvested = types.Round2(summary.TotalInvested)
	summary.TotalCurrentValue = types.Round2(summary.TotalCurrentValue)
	summary.TotalReturn = types.Round2(summary.TotalCurrentValue - summary.TotalInvested)
	if summary.TotalInvested > 0 {
		summary.TotalReturnPercent = types.Round2(summary.TotalReturn / summary.TotalInvested * 100)
	}

	return summary, nil
}

// GinHandlers contains HTTP handlers for portfolio endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for portfolio endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// GetPortfolioHandler handles GET requests for the client's holdings
func (h *GinHandlers) GetPortfolioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		holdings, err := h.service.GetHoldings(clientID)
		response.Handle(c, holdings, err)
	}
}

// GetSummaryHandler handles GET requests for the aggregate portfolio summary
func (h *GinHandlers) GetSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		summary, err := h.service.Summary(clientID)
		response.Handle(c, summary, err)
	}
}
