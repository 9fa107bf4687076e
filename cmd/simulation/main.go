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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tradeview/paper-trading-api/internal/config"
	"github.com/tradeview/paper-trading-api/internal/market"
	"github.com/tradeview/paper-trading-api/internal/options"
	"github.com/tradeview/paper-trading-api/internal/portfolio"
	"github.com/tradeview/paper-trading-api/internal/trading"
	"github.com/tradeview/paper-trading-api/internal/types"
)

const (
	numTraders     = 5
	minTradesEach  = 10
	maxTradesEach  = 40
	optionTradePct = 0.3 // share of trades placed as options
	serverAddress  = "http://localhost:8080"
)

var symbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN", "NVDA", "META", "NFLX", "SPY", "QQQ"}

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	// Configure pretty logging
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

	// Sort durations for percentile calculations
	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	// Calculate mean
	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	// Calculate median
	median = rs.durations[len(rs.durations)/2]

	// Calculate percentiles
	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the paper-trading API
type simulationClient struct {
	baseURL string
	client  *http.Client
	mu      sync.Mutex
	stats   map[string]*routeStats
}

// newSimulationClient creates and initializes a new simulation client
func newSimulationClient() *simulationClient {
	return &simulationClient{
		baseURL: serverAddress,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		stats: map[string]*routeStats{
			"register":  {name: "Register User"},
			"stocks":    {name: "List Stocks"},
			"trade":     {name: "Place Trade"},
			"portfolio": {name: "Get Portfolio"},
			"orders":    {name: "Get Orders"},
			"options":   {name: "Options Chain"},
		},
	}
}

func (sc *simulationClient) track(route string, start time.Time, failed bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.stats[route].addDuration(time.Since(start))
	if failed {
		sc.stats[route].failures++
	}
}

// doJSON performs a request and decodes the standard response envelope into out.
func (sc *simulationClient) doJSON(method, url string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s failed with status %d: %s", method, url, resp.StatusCode, string(respBody))
	}

	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w, body: %s", err, string(respBody))
		}
	}
	return nil
}

// registerUser creates a new paper-trading account and returns its user ID
func (sc *simulationClient) registerUser(name string) (string, error) {
	start := time.Now()
	var result types.RegisterResponse
	err := sc.doJSON(
		"POST",
		fmt.Sprintf("%s/api/v1/paper-trading/register", sc.baseURL),
		types.RegisterRequest{Name: name, Email: strings.ToLower(name) + "@example.com"},
		&result,
	)
	sc.track("register", start, err != nil)
	if err != nil {
		return "", err
	}
	return result.UserID, nil
}

// refreshStocks triggers a price refresh and returns the catalog snapshot
func (sc *simulationClient) refreshStocks() (map[string]types.Instrument, error) {
	start := time.Now()
	var result types.StockListResponse
	err := sc.doJSON("GET", fmt.Sprintf("%s/api/v1/paper-trading/stocks", sc.baseURL), nil, &result)
	sc.track("stocks", start, err != nil)
	if err != nil {
		return nil, err
	}
	return result.Stocks, nil
}

// placeTrade submits a trade instruction and returns the fill
func (sc *simulationClient) placeTrade(req types.TradeRequest) (*types.TradeResponse, error) {
	start := time.Now()
	var result types.TradeResponse
	err := sc.doJSON("POST", fmt.Sprintf("%s/api/v1/paper-trading/trade", sc.baseURL), req, &result)
	sc.track("trade", start, err != nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// getPortfolio retrieves a user's valued portfolio
func (sc *simulationClient) getPortfolio(userID string) (*types.PortfolioSnapshot, error) {
	start := time.Now()
	var result types.PortfolioSnapshot
	err := sc.doJSON("GET", fmt.Sprintf("%s/api/v1/paper-trading/portfolio/%s", sc.baseURL, userID), nil, &result)
	sc.track("portfolio", start, err != nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// getOrders retrieves a user's order history
func (sc *simulationClient) getOrders(userID string) ([]types.Order, error) {
	start := time.Now()
	var result types.OrderListResponse
	err := sc.doJSON("GET", fmt.Sprintf("%s/api/v1/paper-trading/orders/%s", sc.baseURL, userID), nil, &result)
	sc.track("orders", start, err != nil)
	if err != nil {
		return nil, err
	}
	return result.Orders, nil
}

// getOptionsChain retrieves the generated chain for an underlying
func (sc *simulationClient) getOptionsChain(symbol string) ([]types.OptionQuote, error) {
	start := time.Now()
	var result types.OptionsChainResponse
	err := sc.doJSON("GET", fmt.Sprintf("%s/api/v1/paper-trading/options/%s", sc.baseURL, symbol), nil, &result)
	sc.track("options", start, err != nil)
	if err != nil {
		return nil, err
	}
	return result.Options, nil
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\n📊 API Performance Statistics")
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

// traderStats aggregates the outcome of one simulated trader's session
type traderStats struct {
	userID        string
	name          string
	trades        int
	rejected      int
	finalValue    float64
	finalPnL      float64
	symbolCounts  map[string]int
	sideCounts    map[string]int
	optionsTraded int
}

// main runs the paper-trading simulation: it starts a local API server and
// drives concurrent simulated traders through register/trade/portfolio flows
func main() {
	// Start the server in a goroutine
	go func() {
		if err := startServer(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	simClient := newSimulationClient()

	startTime := time.Now()
	results := make(chan *traderStats, numTraders)
	var wg sync.WaitGroup

	for i := 0; i < numTraders; i++ {
		wg.Add(1)
		go func(traderID int) {
			defer wg.Done()
			results <- runTrader(traderID, simClient)
		}(i)
	}

	wg.Wait()
	close(results)

	// Aggregate results
	totalTrades := 0
	totalRejected := 0
	totalOptions := 0
	symbolCounts := make(map[string]int)
	sideCounts := make(map[string]int)
	var traders []*traderStats

	for ts := range results {
		if ts == nil {
			continue
		}
		traders = append(traders, ts)
		totalTrades += ts.trades
		totalRejected += ts.rejected
		totalOptions += ts.optionsTraded
		for symbol, count := range ts.symbolCounts {
			symbolCounts[symbol] += count
		}
		for side, count := range ts.sideCounts {
			sideCounts[side] += count
		}
	}

	duration := time.Since(startTime)

	// Print summary
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("🚀 PAPER TRADING SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
📊 Trade Statistics
------------------
Traders:          %d
Filled Trades:    %d
Rejected Trades:  %d
Option Trades:    %d
Duration:         %v

💰 Trader Results
----------------
`, len(traders), totalTrades, totalRejected, totalOptions, duration.Round(time.Millisecond))

	for _, ts := range traders {
		fmt.Printf("%-10s value: $%.2f  pnl: %+.2f  trades: %d (rejected %d)\n",
			ts.name, ts.finalValue, ts.finalPnL, ts.trades, ts.rejected)
	}

	fmt.Println("\n📈 Symbol Distribution")
	fmt.Println("--------------------")
	maxSymbolCount := 0
	for _, count := range symbolCounts {
		if count > maxSymbolCount {
			maxSymbolCount = count
		}
	}
	for symbol, count := range symbolCounts {
		barLength := int(float64(count) / float64(maxSymbolCount) * 20)
		bar := strings.Repeat("█", barLength)
		fmt.Printf("%-6s: %s (%d)\n", symbol, bar, count)
	}

	fmt.Println("\n📉 Side Distribution")
	fmt.Println("------------------")
	for side, count := range sideCounts {
		barLength := 0
		if totalTrades > 0 {
			barLength = int(float64(count) / float64(totalTrades) * 20)
		}
		bar := strings.Repeat("█", barLength)
		fmt.Printf("%-4s: %s (%d)\n", side, bar, count)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("traders", len(traders)).
		Int("filled_trades", totalTrades).
		Int("rejected_trades", totalRejected).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// runTrader simulates one trader's session: register, then a random mix of
// stock and option trades with periodic portfolio checks
func runTrader(traderID int, simClient *simulationClient) *traderStats {
	name := fmt.Sprintf("Trader%d", traderID)

	userID, err := simClient.registerUser(name)
	if err != nil {
		log.Error().Err(err).Str("trader", name).Msg("Failed to register user")
		return nil
	}

	ts := &traderStats{
		userID:       userID,
		name:         name,
		symbolCounts: make(map[string]int),
		sideCounts:   make(map[string]int),
	}

	numTrades := rand.Intn(maxTradesEach-minTradesEach) + minTradesEach
	for i := 0; i < numTrades; i++ {
		stocks, err := simClient.refreshStocks()
		if err != nil {
			log.Error().Err(err).Str("trader", name).Msg("Failed to refresh stocks")
			continue
		}

		symbol := symbols[rand.Intn(len(symbols))]
		req := types.TradeRequest{
			UserID:    userID,
			Symbol:    symbol,
			Quantity:  rand.Intn(10) + 1,
			TradeType: types.TradeTypeBuy,
			AssetType: types.AssetTypeStock,
		}

		// Sell roughly a third of the time, but only what is actually held
		if rand.Float64() < 0.35 {
			req.TradeType = types.TradeTypeSell
		}

		if rand.Float64() < optionTradePct {
			chain, err := simClient.getOptionsChain(symbol)
			if err != nil || len(chain) == 0 {
				log.Error().Err(err).Str("trader", name).Msg("Failed to fetch options chain")
				continue
			}
			quote := chain[rand.Intn(len(chain))]
			req.AssetType = types.AssetTypeOption
			req.Quantity = rand.Intn(2) + 1
			req.StrikePrice = quote.StrikePrice
			req.OptionType = quote.OptionType
			req.DaysToExpiry = quote.ExpiryDays
		}

		result, err := simClient.placeTrade(req)
		if err != nil {
			// Insufficient funds/shares rejections are an expected part of
			// the random flow
			ts.rejected++
			log.Debug().Err(err).Str("trader", name).Msg("Trade rejected")
			continue
		}

		ts.trades++
		ts.symbolCounts[req.Symbol]++
		ts.sideCounts[req.TradeType]++
		if req.AssetType == types.AssetTypeOption {
			ts.optionsTraded++
		}

		log.Info().
			Str("trader", name).
			Str("order_id", result.OrderID).
			Str("symbol", req.Symbol).
			Str("side", req.TradeType).
			Str("asset_type", req.AssetType).
			Int("quantity", req.Quantity).
			Float64("cash", result.Portfolio.Cash).
			Float64("stock_price", stocks[req.Symbol].CurrentPrice).
			Msg("Trade filled")

		// Random sleep between trades
		time.Sleep(time.Duration(rand.Intn(200)) * time.Millisecond)
	}

	snapshot, err := simClient.getPortfolio(userID)
	if err != nil {
		log.Error().Err(err).Str("trader", name).Msg("Failed to fetch final portfolio")
		return ts
	}
	ts.finalValue = snapshot.TotalValue
	ts.finalPnL = snapshot.PnL

	orders, err := simClient.getOrders(userID)
	if err == nil && len(orders) != ts.trades {
		log.Warn().
			Str("trader", name).
			Int("journal", len(orders)).
			Int("filled", ts.trades).
			Msg("Order journal count mismatch")
	}

	return ts
}

// startServer initializes and starts the paper-trading API server
func startServer() error {
	cfg := config.Load()

	catalog := market.NewCatalog(cfg.Market.Volatility)
	accounts := portfolio.NewStore(cfg.Trading.InitialBalance)
	journal := trading.NewJournal()

	tradingService := trading.NewService(accounts, catalog, journal)

	router := gin.Default()
	marketHandlers := market.NewGinHandlers(catalog)
	optionsHandlers := options.NewGinHandlers(catalog)
	portfolioHandlers := portfolio.NewGinHandlers(accounts, catalog)
	tradingHandlers := trading.NewGinHandlers(tradingService)

	paper := router.Group("/api/v1/paper-trading")
	{
		paper.POST("/register", portfolioHandlers.RegisterHandler())
		paper.GET("/stocks", marketHandlers.ListStocksHandler())
		paper.GET("/portfolio/:user_id", portfolioHandlers.GetPortfolioHandler())
		paper.POST("/trade", tradingHandlers.PlaceTradeHandler())
		paper.GET("/orders/:user_id", tradingHandlers.GetOrdersHandler())
		paper.GET("/options/:symbol", optionsHandlers.ChainHandler())
		paper.POST("/reset/:user_id", portfolioHandlers.ResetHandler())
	}

	return router.Run(":" + cfg.Server.Port)
}
