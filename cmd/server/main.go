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

	"github.com/tradeview/paper-trading-api/internal/config"
	"github.com/tradeview/paper-trading-api/internal/market"
	"github.com/tradeview/paper-trading-api/internal/options"
	"github.com/tradeview/paper-trading-api/internal/portfolio"
	"github.com/tradeview/paper-trading-api/internal/trading"
	"github.com/tradeview/paper-trading-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// configureLogging sets up application logging from the server config:
// pretty printing with timestamps outside production, debug level when
// requested.
func configureLogging(cfg config.ServerConfig) {
	// Configure pretty logging for development
	if cfg.Env != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the paper-trading API server with graceful
// shutdown support. All engine state lives in memory for the process
// lifetime: the instrument catalog, the account ledgers and the order
// journal.
func main() {
	cfg := config.Load()
	configureLogging(cfg.Server)

	// Initialize engine state
	catalog := market.NewCatalog(cfg.Market.Volatility)
	accounts := portfolio.NewStore(cfg.Trading.InitialBalance)
	journal := trading.NewJournal()

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	marketHandlers := market.NewGinHandlers(catalog)
	optionsHandlers := options.NewGinHandlers(catalog)
	portfolioHandlers := portfolio.NewGinHandlers(accounts, catalog)

	tradingService := trading.NewService(accounts, catalog, journal)
	tradingHandlers := trading.NewGinHandlers(tradingService)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, marketHandlers, optionsHandlers, portfolioHandlers, tradingHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
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
// Parameters:
//   - router: The main Gin router instance
//   - marketHandlers: Handlers for the instrument catalog
//   - optionsHandlers: Handlers for options chains
//   - portfolioHandlers: Handlers for registration and portfolios
//   - tradingHandlers: Handlers for trade execution and order history
func setupRoutes(
	router *gin.Engine,
	marketHandlers *market.GinHandlers,
	optionsHandlers *options.GinHandlers,
	portfolioHandlers *portfolio.GinHandlers,
	tradingHandlers *trading.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		paper := v1.Group("/paper-trading")
		{
			paper.POST("/register", portfolioHandlers.RegisterHandler())
			paper.GET("/stocks", marketHandlers.ListStocksHandler())
			paper.GET("/portfolio/:user_id", portfolioHandlers.GetPortfolioHandler())
			paper.POST("/trade", tradingHandlers.PlaceTradeHandler())
			paper.GET("/orders/:user_id", tradingHandlers.GetOrdersHandler())
			paper.GET("/options/:symbol", optionsHandlers.ChainHandler())
			paper.POST("/reset/:user_id", portfolioHandlers.ResetHandler())
		}
	}
}
