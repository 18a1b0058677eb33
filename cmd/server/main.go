package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/auth"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/config"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/database"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/instruments"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/market"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/portfolio"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trades"
	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/trading"
	"github.com/Amrut00/Bajaj-Broker-Assignment/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the trading API server with graceful shutdown support
// It sets up all required services, database connections, and API routes
func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register the mock client credentials
	authService.RegisterAPICredentials(auth.MockAPIKey, auth.MockAPISecret)

	registry := instruments.NewService(db)
	if err := registry.Seed(); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to seed instrument registry")
	}
	instrumentHandlers := instruments.NewGinHandlers(registry)

	recorder := trades.NewService(db)
	tradeHandlers := trades.NewGinHandlers(recorder)

	ledger := portfolio.NewService(db, registry)
	portfolioHandlers := portfolio.NewGinHandlers(ledger)

	tradingService := trading.NewService(db, registry, recorder, ledger)
	tradingHandlers := trading.NewGinHandlers(tradingService)

	// Background workers: pending-order sweep and market ticker
	hub := market.NewHub()
	ticker := market.NewTicker(registry, hub, cfg.TickInterval)
	processor := trading.NewProcessor(tradingService, cfg.SweepInterval)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go hub.Run(workerCtx)
	go ticker.Start(workerCtx)
	go processor.Start(workerCtx)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, cfg.JWTSecret, authHandlers, instrumentHandlers, tradingHandlers, tradeHandlers, portfolioHandlers, hub)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Trading routes: Protected by JWT authentication
// - Internal routes: Protected by internal authentication
func setupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authHandlers *auth.GinHandlers,
	instrumentHandlers *instruments.GinHandlers,
	tradingHandlers *trading.GinHandlers,
	tradeHandlers *trades.GinHandlers,
	portfolioHandlers *portfolio.GinHandlers,
	hub *market.Hub,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/token", authHandlers.GenerateTokenHandler())
		}

		// Instrument routes (public market data)
		instrumentRoutes := v1.Group("/instruments")
		{
			instrumentRoutes.GET("", instrumentHandlers.ListInstrumentsHandler())
			instrumentRoutes.GET("/:symbol", instrumentHandlers.GetInstrumentHandler())
		}

		// Market stream
		v1.GET("/market/stream", hub.StreamHandler())

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.JWTAuth(jwtSecret))
		{
			orders.POST("", tradingHandlers.PlaceOrderHandler())
			orders.GET("", tradingHandlers.ListOrdersHandler())
			orders.GET("/:order_id", tradingHandlers.GetOrderHandler())
			orders.POST("/:order_id/cancel", tradingHandlers.CancelOrderHandler())
		}

		// Trade history routes
		tradeRoutes := v1.Group("/trades")
		tradeRoutes.Use(middleware.JWTAuth(jwtSecret))
		{
			tradeRoutes.GET("", tradeHandlers.ListTradesHandler())
			tradeRoutes.GET("/:trade_id", tradeHandlers.GetTradeHandler())
		}

		// Portfolio routes
		portfolioRoutes := v1.Group("/portfolio")
		portfolioRoutes.Use(middleware.JWTAuth(jwtSecret))
		{
			portfolioRoutes.GET("", portfolioHandlers.GetPortfolioHandler())
			portfolioRoutes.GET("/summary", portfolioHandlers.GetSummaryHandler())
		}

		// Internal routes (should be protected by internal network)
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(jwtSecret))
		{
			internal.POST("/process-pending", tradingHandlers.ProcessPendingHandler())
			internal.POST("/instruments/:symbol/price", instrumentHandlers.SetPriceHandler())
		}
	}
}
