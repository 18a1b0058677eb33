// Package trades converts executed orders into immutable trade records.
// Trades are append-only: exactly one is created per executed order and
// none is ever updated or deleted.
package trades

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/response"
)

// Service handles trade recording and history lookups
type Service struct {
	db *Database
}

// NewService creates a new trade recorder with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// Record creates the trade for an executed order at the given fill price.
// It writes through tx so the caller can commit the trade atomically with
// the order-status and portfolio mutations.
func (s *Service) Record(tx *gorm.DB, order *types.Order, executionPrice float64) (*types.Trade, error) {
	trade := &types.Trade{
		TradeID:     "TRD_" + uuid.New().String(),
		OrderID:     order.OrderID,
		ClientID:    order.ClientID,
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Price:       types.Round2(executionPrice),
		TotalAmount: types.Round2(float64(order.Quantity) * executionPrice),
		ExecutedAt:  time.Now(),
	}

	if err := NewDatabase(tx).CreateTrade(trade); err != nil {
		return nil, err
	}

	return trade, nil
}

// GetTrade retrieves a trade by ID, scoped to the owning client.
func (s *Service) GetTrade(tradeID, clientID string) (*types.Trade, error) {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("%w: trade %s", types.ErrNotFound, tradeID)
	}
	if trade.ClientID != clientID {
		return nil, types.ErrForbidden
	}
	return trade, nil
}

// GetClientTrades retrieves a client's trade history, newest first.
func (s *Service) GetClientTrades(clientID string) ([]types.Trade, error) {
	return s.db.GetClientTrades(clientID)
}

// GinHandlers contains HTTP handlers for trade endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for trade endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListTradesHandler handles GET requests for the client's trade history
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		trades, err := h.service.GetClientTrades(clientID)
		response.Handle(c, trades, err)
	}
}

// GetTradeHandler handles GET requests for a single trade
// URL parameter: trade_id
func (h *GinHandlers) GetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		trade, err := h.service.GetTrade(c.Param("trade_id"), clientID)
		response.Handle(c, trade, err)
	}
}
