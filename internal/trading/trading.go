// Package trading orchestrates the order lifecycle: placement, execution
// attempts, cancellation and the pending-order sweep. Orders move through
// NEW -> PLACED -> EXECUTED or NEW -> PLACED -> CANCELLED; executed price
// and quantity are set only when an order reaches EXECUTED.
package trading

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/execution"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/instruments"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/portfolio"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trades"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/response"
)

// Service handles order management and execution orchestration.
//
// A single mutex serializes all mutating operations, so each order's
// placement-through-portfolio-update sequence runs atomically with
// respect to other operations touching the same order, price or
// holdings.
type Service struct {
	mu       sync.Mutex
	db       *Database
	registry *instruments.Service
	recorder *trades.Service
	ledger   *portfolio.Service
}

// NewService creates a new order lifecycle service.
func NewService(gormDB *gorm.DB, registry *instruments.Service, recorder *trades.Service, ledger *portfolio.Service) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		registry: registry,
		recorder: recorder,
		ledger:   ledger,
	}
}

// PlaceOrder validates and creates a new order, then attempts immediate
// execution. It returns the order in whichever state resulted: EXECUTED
// for a fill, PLACED for a LIMIT order awaiting its price. A failed
// execution attempt is non-fatal; the order stays PLACED and retryable.
//
// Placement is idempotent: retrying with the same key returns the
// existing order.
func (s *Service) PlaceOrder(clientID string, req OrderRequest, idempotencyKey string) (*types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for existing idempotency record
	if idempotencyKey != "" {
		record, err := s.db.GetIdempotencyRecord(idempotencyKey)
		if err != nil {
			return nil, err
		}
		if record != nil && record.ExpiresAt.After(time.Now()) {
			existing, err := s.db.GetOrder(record.ResourceID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, fmt.Errorf("%w: order %s", types.ErrNotFound, record.ResourceID)
			}
			return existing, nil
		}
	}

	if !req.Side.Valid() {
		return nil, fmt.Errorf("invalid side %q", req.Side)
	}
	if !req.OrderType.Valid() {
		return nil, fmt.Errorf("invalid order type %q", req.OrderType)
	}
	if !s.registry.Exists(req.Symbol) {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidSymbol, req.Symbol)
	}
	if req.OrderType == types.OrderTypeLimit && req.Price <= 0 {
		return nil, types.ErrMissingPrice
	}

	// NEW is transient: the order is advanced to PLACED within the same
	// placement call.
	order := &types.Order{
		OrderID:   "ORD_" + uuid.New().String(),
		ClientID:  clientID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		OrderType: req.OrderType,
		Quantity:  req.Quantity,
		Status:    types.OrderStatusNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.OrderType == types.OrderTypeLimit {
		order.LimitPrice = types.Round2(req.Price)
	}
	order.Status = types.OrderStatusPlaced

	var err error
	if idempotencyKey != "" {
		err = s.db.CreateOrderWithIdempotency(order, idempotencyKey)
	} else {
		err = s.db.CreateOrder(order)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Str("order_type", string(order.OrderType)).
		Int64("quantity", order.Quantity).
		Msg("order placed")

	// Attempt immediate execution. Failures leave the order PLACED and
	// are reported as "no execution this attempt".
	executed, err := s.attemptExecution(order)
	if err != nil {
		log.Warn().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("immediate execution attempt failed, order remains placed")
		return order, nil
	}
	if executed != nil {
		return executed, nil
	}

	return order, nil
}

// AttemptExecution tries to execute a pending order by ID. It is a no-op
// for absent orders and for orders not in PLACED state. It returns the
// executed order, or nil if no execution happened this attempt.
func (s *Service) AttemptExecution(orderID string) (*types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Status != types.OrderStatusPlaced {
		return nil, nil
	}

	return s.attemptExecution(order)
}

// attemptExecution runs one execution attempt for a PLACED order. The
// caller must hold s.mu.
//
// The price is fetched once and reused for the whole decision. When the
// order is executable, the portfolio update, trade record and order
// status change commit in a single transaction: the fill is applied
// before the status mutation so an unaffordable SELL rolls the whole
// attempt back and leaves the order PLACED.
func (s *Service) attemptExecution(order *types.Order) (*types.Order, error) {
	currentPrice, err := s.registry.GetPrice(order.Symbol)
	if err != nil {
		return nil, err
	}

	if !execution.CanExecute(order, currentPrice) {
		// LIMIT order awaiting its price.
		return nil, nil
	}

	fillPrice := execution.ExecutionPrice(order, currentPrice)

	var trade *types.Trade
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.ApplyFill(tx, order.ClientID, order.Symbol, order.Quantity, fillPrice, order.Side); err != nil {
			return err
		}

		t, err := s.recorder.Record(tx, order, fillPrice)
		if err != nil {
			return err
		}
		trade = t

		order.Status = types.OrderStatusExecuted
		order.ExecutedPrice = fillPrice
		order.ExecutedQuantity = order.Quantity
		order.UpdatedAt = time.Now()
		return tx.Save(order).Error
	})
	if err != nil {
		// Roll the in-memory copy back to match the database.
		order.Status = types.OrderStatusPlaced
		order.ExecutedPrice = 0
		order.ExecutedQuantity = 0
		return nil, err
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("trade_id", trade.TradeID).
		Float64("current_price", currentPrice).
		Float64("fill_price", fillPrice).
		Int64("quantity", order.Quantity).
		Msg("order executed")

	return order, nil
}

// CancelOrder cancels a pending order. Only the owning client may cancel,
// and only while the order is not yet EXECUTED or CANCELLED.
func (s *Service) CancelOrder(orderID, clientID string) (*types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", types.ErrNotFound, orderID)
	}
	if order.ClientID != clientID {
		return nil, types.ErrForbidden
	}
	if order.Status.Terminal() {
		return nil, types.ErrAlreadyTerminal
	}

	order.Status = types.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := s.db.UpdateOrder(order); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("client_id", clientID).
		Msg("order cancelled")

	return order, nil
}

// ProcessPendingOrders sweeps all PLACED orders and attempts execution on
// each, returning those that newly executed. The sweep is best-effort:
// a failed attempt is logged and skipped so one bad order does not halt
// processing of the rest.
func (s *Service) ProcessPendingOrders() ([]types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.db.GetPlacedOrders()
	if err != nil {
		return nil, err
	}

	var executed []types.Order
	for i := range pending {
		order := pending[i]
		filled, err := s.attemptExecution(&order)
		if err != nil {
			log.Warn().
				Err(err).
				Str("order_id", order.OrderID).
				Msg("execution attempt failed during sweep")
			continue
		}
		if filled != nil {
			executed = append(executed, *filled)
		}
	}

	log.Info().
		Int("pending", len(pending)).
		Int("executed", len(executed)).
		Msg("processed pending orders")

	return executed, nil
}

// GetOrder retrieves an order by ID, scoped to the owning client.
func (s *Service) GetOrder(orderID, clientID string) (*types.Order, error) {
	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", types.ErrNotFound, orderID)
	}
	if order.ClientID != clientID {
		return nil, types.ErrForbidden
	}
	return order, nil
}

// ListOrders retrieves all orders for a client, newest first.
func (s *Service) ListOrders(clientID string) ([]types.Order, error) {
	return s.db.GetClientOrders(clientID)
}

// GinHandlers contains HTTP handlers for order endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for order endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// PlaceOrderHandler handles POST requests to place new orders
// Requires a valid JWT token; an Idempotency-Key header makes retries safe
func (h *GinHandlers) PlaceOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		var req OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, err := h.service.PlaceOrder(clientID, req, c.GetHeader("Idempotency-Key"))
		response.Handle(c, order, err)
	}
}

// GetOrderHandler handles GET requests to retrieve order status
// URL parameter: order_id
func (h *GinHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		order, err := h.service.GetOrder(c.Param("order_id"), clientID)
		response.Handle(c, order, err)
	}
}

// ListOrdersHandler handles GET requests for the client's order history
func (h *GinHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		orders, err := h.service.ListOrders(clientID)
		response.Handle(c, orders, err)
	}
}

// CancelOrderHandler handles POST requests to cancel pending orders
// URL parameter: order_id
func (h *GinHandlers) CancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("clientID")
		if clientID == "" {
			response.Unauthorized(c, "Missing client identity")
			return
		}

		order, err := h.service.CancelOrder(c.Param("order_id"), clientID)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.SuccessMessage(c, "order cancelled", order)
	}
}

// ProcessPendingHandler handles POST requests to sweep pending orders
// Requires internal authentication
func (h *GinHandlers) ProcessPendingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		executed, err := h.service.ProcessPendingOrders()
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.SuccessMessage(c, fmt.Sprintf("%d orders executed", len(executed)), executed)
	}
}
