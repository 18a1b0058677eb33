package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/auth"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/database"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/instruments"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/portfolio"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trades"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trading"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/middleware"
)

const (
	minOrders     = 15
	maxOrders     = 100
	numWorkers    = 5
	serverAddress = "http://localhost:8080"
	jwtSecret     = "broker-secret-key"
)

var sides = []types.Side{types.SideBuy, types.SideSell}

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	median = rs.durations[len(rs.durations)/2]

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the trading API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	stats     map[string]*routeStats
}

// newSimulationClient creates and initializes a new simulation client
// It authenticates with the API and prepares performance tracking
func newSimulationClient() (*simulationClient, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	sc := &simulationClient{
		baseURL: serverAddress,
		client:  client,
		stats: map[string]*routeStats{
			"auth":        {name: "Authentication"},
			"instruments": {name: "List Instruments"},
			"create":      {name: "Place Order"},
			"get":         {name: "Get Order"},
			"sweep":       {name: "Process Pending"},
			"portfolio":   {name: "Get Portfolio"},
		},
	}

	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

// authenticate performs API authentication and returns a JWT token
func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["auth"].addDuration(time.Since(start))
	}()

	credentials := map[string]string{
		"api_key":    auth.MockAPIKey,
		"api_secret": auth.MockAPISecret,
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/token", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Data.Token, nil
}

// listInstruments retrieves the tradable instrument list
func (sc *simulationClient) listInstruments() ([]types.Instrument, error) {
	start := time.Now()
	defer func() {
		sc.stats["instruments"].addDuration(time.Since(start))
	}()

	resp, err := sc.client.Get(fmt.Sprintf("%s/api/v1/instruments", sc.baseURL))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list instruments failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool               `json:"success"`
		Data    []types.Instrument `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// placeOrder submits a new order to the API
// Returns the created order on success
func (sc *simulationClient) placeOrder(req *trading.OrderRequest) (*types.Order, error) {
	start := time.Now()
	defer func() {
		sc.stats["create"].addDuration(time.Since(start))
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/v1/orders", sc.baseURL),
		bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := sc.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Msg("Place order response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("place order failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool        `json:"success"`
		Data    types.Order `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	if result.Data.OrderID == "" {
		return nil, fmt.Errorf("no order ID in response: %s", string(respBody))
	}

	return &result.Data, nil
}

// getOrder retrieves the current status of an order
func (sc *simulationClient) getOrder(orderID string) (*types.Order, error) {
	start := time.Now()
	defer func() {
		sc.stats["get"].addDuration(time.Since(start))
	}()

	req, err := http.NewRequest(
		"GET",
		fmt.Sprintf("%s/api/v1/orders/%s", sc.baseURL, orderID),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get order failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool        `json:"success"`
		Data    types.Order `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return &result.Data, nil
}

// processPending triggers a sweep over all pending orders
// Returns the orders that newly executed
func (sc *simulationClient) processPending() ([]types.Order, error) {
	start := time.Now()
	defer func() {
		sc.stats["sweep"].addDuration(time.Since(start))
	}()

	req, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/v1/internal/process-pending", sc.baseURL),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Msg("Process pending response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("process pending failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool          `json:"success"`
		Data    []types.Order `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return result.Data, nil
}

// getPortfolioSummary retrieves the aggregate portfolio view
func (sc *simulationClient) getPortfolioSummary() (*types.PortfolioSummary, error) {
	start := time.Now()
	defer func() {
		sc.stats["portfolio"].addDuration(time.Since(start))
	}()

	req, err := http.NewRequest(
		"GET",
		fmt.Sprintf("%s/api/v1/portfolio/summary", sc.baseURL),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get portfolio summary failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool                   `json:"success"`
		Data    types.PortfolioSummary `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return &result.Data, nil
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\nAPI Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range sc.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// main runs the trading simulation
// It starts a local API server and simulates a burst of client orders,
// sweeps pending limit orders, and prints the resulting portfolio
func main() {
	// Start the server in a goroutine
	go func() {
		if err := startServer(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// Initialize simulation client
	simClient, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}

	// Discover tradable instruments
	available, err := simClient.listInstruments()
	if err != nil || len(available) == 0 {
		log.Fatal().Err(err).Msg("Failed to list instruments")
	}

	targetOrders := rand.Intn(maxOrders-minOrders) + minOrders
	log.Info().Int("target_orders", targetOrders).Msg("Starting simulation")

	ordersChan := make(chan string, targetOrders)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			placeOrdersHTTP(workerID, targetOrders/numWorkers, simClient, available, ordersChan)
		}(i)
	}

	wg.Wait()
	close(ordersChan)

	var orderIDs []string
	for orderID := range ordersChan {
		orderIDs = append(orderIDs, orderID)
	}

	log.Info().Int("orders_created", len(orderIDs)).Msg("All orders placed")

	stats := struct {
		TotalOrders    int
		ExecutedOrders int
		PendingOrders  int
		SweepExecuted  int
		TotalValue     float64
		FailedOrders   int
		StartTime      time.Time
		Symbols        map[string]int
		Sides          map[string]int
	}{
		StartTime: time.Now(),
		Symbols:   make(map[string]int),
		Sides:     make(map[string]int),
	}
	stats.TotalOrders = len(orderIDs)

	for _, orderID := range orderIDs {
		order, err := simClient.getOrder(orderID)
		if err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("Failed to fetch order")
			stats.FailedOrders++
			continue
		}

		stats.Symbols[order.Symbol]++
		stats.Sides[string(order.Side)]++
		switch order.Status {
		case types.OrderStatusExecuted:
			stats.ExecutedOrders++
			stats.TotalValue += order.ExecutedPrice * float64(order.ExecutedQuantity)
		case types.OrderStatusPlaced:
			stats.PendingOrders++
		}
	}

	// Sweep pending limit orders a few times; jitter on instrument
	// listings moves the market between sweeps.
	for i := 0; i < 5; i++ {
		if _, err := simClient.listInstruments(); err != nil {
			log.Error().Err(err).Msg("Failed to jitter prices")
		}

		executed, err := simClient.processPending()
		if err != nil {
			log.Error().Err(err).Msg("Failed to process pending orders")
			continue
		}
		stats.SweepExecuted += len(executed)
		for _, order := range executed {
			stats.TotalValue += order.ExecutedPrice * float64(order.ExecutedQuantity)
			log.Info().
				Str("order_id", order.OrderID).
				Float64("price", order.ExecutedPrice).
				Int64("quantity", order.ExecutedQuantity).
				Msg("Pending order executed by sweep")
		}
	}

	summary, err := simClient.getPortfolioSummary()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch portfolio summary")
	}

	// Print summary
	duration := time.Since(stats.StartTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("TRADING SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Order Statistics
----------------
Total Orders:     %d
Executed:         %d
Still Pending:    %d
Sweep Executed:   %d
Failed Orders:    %d
Total Value:      %.2f
Duration:         %v

Symbol Distribution
-------------------
`, stats.TotalOrders, stats.ExecutedOrders, stats.PendingOrders-stats.SweepExecuted,
		stats.SweepExecuted, stats.FailedOrders, stats.TotalValue,
		duration.Round(time.Millisecond))

	maxSymbolCount := 0
	for _, count := range stats.Symbols {
		if count > maxSymbolCount {
			maxSymbolCount = count
		}
	}

	for symbol, count := range stats.Symbols {
		barLength := int(float64(count) / float64(maxSymbolCount) * 20)
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-10s: %s (%d)\n", symbol, bar, count)
	}

	fmt.Println("\nSide Distribution")
	fmt.Println("-----------------")
	for side, count := range stats.Sides {
		barLength := int(float64(count) / float64(stats.TotalOrders) * 20)
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-4s: %s (%d)\n", side, bar, count)
	}

	if summary != nil {
		fmt.Printf(`
Portfolio Summary
-----------------
Positions:        %d
Total Invested:   %.2f
Current Value:    %.2f
Total Return:     %.2f (%.2f%%)
Profitable:       %d
Losing:           %d
`, summary.Positions, summary.TotalInvested, summary.TotalCurrentValue,
			summary.TotalReturn, summary.TotalReturnPercent,
			summary.ProfitablePositions, summary.LosingPositions)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("total_orders", stats.TotalOrders).
		Int("executed_orders", stats.ExecutedOrders).
		Int("sweep_executed", stats.SweepExecuted).
		Float64("total_value", stats.TotalValue).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// placeOrdersHTTP generates and submits random orders to the API
// Runs as a worker goroutine, sending created order IDs to ordersChan
func placeOrdersHTTP(workerID, numOrders int, simClient *simulationClient, available []types.Instrument, ordersChan chan<- string) {
	for i := 0; i < numOrders; i++ {
		instrument := available[rand.Intn(len(available))]

		req := &trading.OrderRequest{
			Symbol:    instrument.Symbol,
			Side:      sides[rand.Intn(len(sides))],
			OrderType: types.OrderTypeMarket,
			Quantity:  int64(rand.Intn(50) + 1),
		}

		// A third of the orders are limit orders priced around the
		// current market, so some rest until a sweep fills them.
		if rand.Intn(3) == 0 {
			req.OrderType = types.OrderTypeLimit
			req.Price = types.Round2(instrument.CurrentPrice * (1 + (rand.Float64()*2-1)*0.01))
		}

		order, err := simClient.placeOrder(req)
		if err != nil {
			log.Error().Err(err).
				Int("worker_id", workerID).
				Str("symbol", req.Symbol).
				Msg("Failed to place order")
			continue
		}

		ordersChan <- order.OrderID
		log.Info().
			Int("worker_id", workerID).
			Str("order_id", order.OrderID).
			Str("symbol", order.Symbol).
			Str("side", string(order.Side)).
			Str("status", string(order.Status)).
			Int64("quantity", order.Quantity).
			Msg("Order placed")

		// Random sleep between orders
		time.Sleep(time.Duration(rand.Intn(200)) * time.Millisecond)
	}
}

// startServer initializes and starts the trading API server
// Sets up all required services, handlers and routes
func startServer() error {
	db, err := database.NewDatabase("simulation.db")
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	authService := auth.NewService(jwtSecret)
	authService.RegisterAPICredentials(auth.MockAPIKey, auth.MockAPISecret)

	registry := instruments.NewService(db)
	if err := registry.Seed(); err != nil {
		return fmt.Errorf("failed to seed instruments: %w", err)
	}

	recorder := trades.NewService(db)
	ledger := portfolio.NewService(db, registry)
	tradingService := trading.NewService(db, registry, recorder, ledger)

	router := gin.Default()
	authHandlers := auth.NewGinHandlers(authService)
	instrumentHandlers := instruments.NewGinHandlers(registry)
	tradingHandlers := trading.NewGinHandlers(tradingService)
	portfolioHandlers := portfolio.NewGinHandlers(ledger)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/token", authHandlers.GenerateTokenHandler())
		v1.GET("/instruments", instrumentHandlers.ListInstrumentsHandler())

		orders := v1.Group("/orders")
		orders.Use(middleware.JWTAuth(jwtSecret))
		{
			orders.POST("", tradingHandlers.PlaceOrderHandler())
			orders.GET("/:order_id", tradingHandlers.GetOrderHandler())
		}

		portfolioRoutes := v1.Group("/portfolio")
		portfolioRoutes.Use(middleware.JWTAuth(jwtSecret))
		{
			portfolioRoutes.GET("/summary", portfolioHandlers.GetSummaryHandler())
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(jwtSecret))
		{
			internal.POST("/process-pending", tradingHandlers.ProcessPendingHandler())
		}
	}

	return router.Run(":8080")
}
