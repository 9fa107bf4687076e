package types

import (
	"strconv"
	"strings"
	"time"
)

// Wire values shared by the API and the engine.
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"

	AssetTypeStock  = "stock"
	AssetTypeOption = "option"

	OptionTypeCall = "call"
	OptionTypePut  = "put"

	// Every accepted trade fills entirely and immediately.
	OrderStatusFilled = "filled"
)

// Instrument is a tradeable stock in the simulated market catalog.
type Instrument struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	CurrentPrice float64 `json:"current_price"`
}

// User represents a registered paper-trading account holder.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	InitialBalance float64   `json:"initial_balance"`
}

// PositionKey identifies a position within a portfolio. Stock positions are
// keyed by symbol alone; option positions additionally carry the contract
// terms, so the same underlying can hold several distinct option positions.
type PositionKey struct {
	Symbol       string
	OptionType   string // empty for stock positions
	Strike       float64
	DaysToExpiry int
}

// StockKey returns the position key for a stock holding.
func StockKey(symbol string) PositionKey {
	return PositionKey{Symbol: symbol}
}

// OptionKey returns the position key for an option contract.
func OptionKey(symbol, optionType string, strike float64, daysToExpiry int) PositionKey {
	return PositionKey{
		Symbol:       symbol,
		OptionType:   optionType,
		Strike:       strike,
		DaysToExpiry: daysToExpiry,
	}
}

// IsOption reports whether the key identifies an option position.
func (k PositionKey) IsOption() bool {
	return k.OptionType != ""
}

// String renders the key in the wire format used by portfolio responses,
// e.g. "AAPL" for stock and "AAPL_call_150_30" for options.
func (k PositionKey) String() string {
	if !k.IsOption() {
		return k.Symbol
	}
	return strings.Join([]string{
		k.Symbol,
		k.OptionType,
		strconv.FormatFloat(k.Strike, 'f', -1, 64),
		strconv.Itoa(k.DaysToExpiry),
	}, "_")
}

// Position is a held quantity of a stock or option contract. Option
// quantities are contracts of 100 underlying shares each. DaysToExpiry is
// fixed at entry and never decremented.
type Position struct {
	Quantity     int     `json:"quantity"`
	Type         string  `json:"type"` // stock or option
	Symbol       string  `json:"symbol,omitempty"`
	StrikePrice  float64 `json:"strike_price,omitempty"`
	OptionType   string  `json:"option_type,omitempty"`
	DaysToExpiry int     `json:"days_to_expiry,omitempty"`
	AvgPrice     float64 `json:"avg_price"`
}

// Order is the immutable record of an executed trade. Price holds the stock
// price or, for options, the per-unit premium at execution.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	TradeType string    `json:"trade_type"` // buy or sell
	AssetType string    `json:"asset_type"` // stock or option
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// OptionQuote is a single priced entry of an options chain.
type OptionQuote struct {
	Symbol          string  `json:"symbol"`
	StrikePrice     float64 `json:"strike_price"`
	ExpiryDays      int     `json:"expiry_days"`
	OptionType      string  `json:"option_type"` // call or put
	Price           float64 `json:"price"`
	UnderlyingPrice float64 `json:"underlying_price"`
}

// TradeRequest carries a buy/sell instruction. Strike, option type and days
// to expiry are only meaningful for option trades.
type TradeRequest struct {
	UserID       string  `json:"user_id" binding:"required"`
	Symbol       string  `json:"symbol" binding:"required"`
	Quantity     int     `json:"quantity"`
	TradeType    string  `json:"trade_type" binding:"required,oneof=buy sell"`
	AssetType    string  `json:"asset_type" binding:"omitempty,oneof=stock option"`
	StrikePrice  float64 `json:"strike_price"`
	OptionType   string  `json:"option_type" binding:"omitempty,oneof=call put"`
	DaysToExpiry int     `json:"days_to_expiry"`
}

// ApplyDefaults fills the optional fields the way the API documents them:
// single-share stock trades, 30-day expiry for options.
func (r *TradeRequest) ApplyDefaults() {
	if r.Quantity <= 0 {
		r.Quantity = 1
	}
	if r.AssetType == "" {
		r.AssetType = AssetTypeStock
	}
	if r.AssetType == AssetTypeOption && r.DaysToExpiry <= 0 {
		r.DaysToExpiry = 30
	}
}
