// Package options prices simulated option contracts. The model is a
// deliberate simplification: intrinsic value plus a linear time-decay proxy,
// with no volatility input. Downstream valuation depends on this exact
// formula, so it must not be swapped for an analytic model.
package options

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/tradeview/paper-trading-api/internal/types"
	"github.com/tradeview/paper-trading-api/pkg/money"
	"github.com/tradeview/paper-trading-api/pkg/response"
)

// Chain grid: every combination of these expiries and strike offsets is
// priced as both a call and a put.
var (
	chainExpiries = []int{7, 14, 30, 60}
	strikeOffsets = []float64{-0.10, -0.05, 0, 0.05, 0.10}
)

const (
	timeValueFactor = 0.1
	// Time-decay floor: even at zero days to expiry the premium keeps
	// roughly a day's worth of time value.
	minTimeDecay = 1.0 / 36.5
	minPremium   = 0.01
)

// Premium returns the simulated premium for one option unit.
func Premium(underlying, strike float64, daysToExpiry int, optionType string) float64 {
	var intrinsic float64
	if optionType == types.OptionTypePut {
		intrinsic = math.Max(strike-underlying, 0)
	} else {
		intrinsic = math.Max(underlying-strike, 0)
	}

	timeDecay := math.Max(float64(daysToExpiry)/365.0, minTimeDecay)
	timeValue := underlying * timeValueFactor * timeDecay

	return money.Round2(math.Max(intrinsic+timeValue, minPremium))
}

// Chain enumerates the options chain for an underlying at its current
// price: 4 expiries × 5 strikes × {call, put}, 40 quotes in total.
func Chain(symbol string, underlying float64) []types.OptionQuote {
	quotes := make([]types.OptionQuote, 0, len(chainExpiries)*len(strikeOffsets)*2)

	for _, days := range chainExpiries {
		for _, offset := range strikeOffsets {
			strike := money.Round2(underlying * (1 + offset))

			for _, optionType := range []string{types.OptionTypeCall, types.OptionTypePut} {
				quotes = append(quotes, types.OptionQuote{
					Symbol:          symbol,
					StrikePrice:     strike,
					ExpiryDays:      days,
					OptionType:      optionType,
					Price:           Premium(underlying, strike, days, optionType),
					UnderlyingPrice: underlying,
				})
			}
		}
	}

	return quotes
}

// PriceSource resolves a symbol to its current price.
type PriceSource interface {
	Price(symbol string) (float64, bool)
}

// GinHandlers contains HTTP handlers for options endpoints
type GinHandlers struct {
	prices PriceSource
}

// NewGinHandlers creates a new set of HTTP handlers for options endpoints
func NewGinHandlers(prices PriceSource) *GinHandlers {
	return &GinHandlers{
		prices: prices,
	}
}

// ChainHandler handles GET requests for an underlying's options chain.
// URL parameter: symbol
func (h *GinHandlers) ChainHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")

		underlying, ok := h.prices.Price(symbol)
		if !ok {
			response.Handle(c, nil, types.ErrInstrumentNotFound)
			return
		}

		response.Success(c, types.OptionsChainResponse{
			Options: Chain(symbol, underlying),
		})
	}
}
