package market

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tradeview/paper-trading-api/internal/types"
	"github.com/tradeview/paper-trading-api/pkg/money"
	"github.com/tradeview/paper-trading-api/pkg/response"
)

// Instruments available for paper trading, with their opening prices.
var defaultInstruments = []types.Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: 150.00},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", CurrentPrice: 2800.00},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", CurrentPrice: 300.00},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Automotive", CurrentPrice: 250.00},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", CurrentPrice: 3300.00},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", CurrentPrice: 450.00},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Technology", CurrentPrice: 350.00},
	{Symbol: "NFLX", Name: "Netflix Inc.", Sector: "Communication Services", CurrentPrice: 500.00},
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Sector: "ETF", CurrentPrice: 450.00},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Sector: "ETF", CurrentPrice: 380.00},
}

// Catalog owns the simulated market: the fixed instrument set and its
// mutable current prices. Prices only move when RefreshPrices is called.
type Catalog struct {
	mu          sync.RWMutex
	instruments map[string]*types.Instrument
	volatility  float64
}

// NewCatalog seeds a catalog with the default instrument set. Volatility is
// the standard deviation of the per-refresh Gaussian price step.
func NewCatalog(volatility float64) *Catalog {
	instruments := make(map[string]*types.Instrument, len(defaultInstruments))
	for _, inst := range defaultInstruments {
		inst := inst
		instruments[inst.Symbol] = &inst
	}
	return &Catalog{
		instruments: instruments,
		volatility:  volatility,
	}
}

// RefreshPrices advances every instrument by one random-walk step:
// price × (1 + ε) with ε ~ N(0, volatility), floored at 0.01.
func (c *Catalog) RefreshPrices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, inst := range c.instruments {
		changePercent := rand.NormFloat64() * c.volatility
		inst.CurrentPrice = money.Round2(math.Max(inst.CurrentPrice*(1+changePercent), 0.01))
	}

	log.Debug().
		Int("instruments", len(c.instruments)).
		Msg("refreshed market prices")
}

// Price returns the current price of a symbol.
func (c *Catalog) Price(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inst, ok := c.instruments[symbol]
	if !ok {
		return 0, false
	}
	return inst.CurrentPrice, true
}

// Get returns a copy of the instrument for a symbol.
func (c *Catalog) Get(symbol string) (types.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inst, ok := c.instruments[symbol]
	if !ok {
		return types.Instrument{}, false
	}
	return *inst, true
}

// Snapshot returns a copy of the full catalog keyed by symbol.
func (c *Catalog) Snapshot() map[string]types.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]types.Instrument, len(c.instruments))
	for symbol, inst := range c.instruments {
		snapshot[symbol] = *inst
	}
	return snapshot
}

// GinHandlers contains HTTP handlers for market data endpoints
type GinHandlers struct {
	catalog *Catalog
}

// NewGinHandlers creates a new set of HTTP handlers for market data endpoints
func NewGinHandlers(catalog *Catalog) *GinHandlers {
	return &GinHandlers{
		catalog: catalog,
	}
}

// ListStocksHandler handles GET requests for the tradeable instrument list.
// Each call advances the simulated prices before returning the snapshot.
func (h *GinHandlers) ListStocksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.catalog.RefreshPrices()

		response.Success(c, types.StockListResponse{
			Stocks:    h.catalog.Snapshot(),
			Timestamp: time.Now(),
		})
	}
}
