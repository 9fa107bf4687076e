package types

import "time"

// PortfolioSnapshot is a valued view of a portfolio at read time. Totals are
// recomputed from live prices on every read, never cached on the account.
type PortfolioSnapshot struct {
	Cash          float64             `json:"cash"`
	Positions     map[string]Position `json:"positions"`
	TotalValue    float64             `json:"total_value"`
	PnL           float64             `json:"pnl"`
	PnLPercentage float64             `json:"pnl_percentage"`
}

// RegisterRequest is the body of the register endpoint.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse acknowledges a new paper-trading account.
type RegisterResponse struct {
	UserID         string  `json:"user_id"`
	InitialBalance float64 `json:"initial_balance"`
}

// StockListResponse is the catalog snapshot returned after a price refresh.
type StockListResponse struct {
	Stocks    map[string]Instrument `json:"stocks"`
	Timestamp time.Time             `json:"timestamp"`
}

// TradeResponse is returned after a successful trade execution.
type TradeResponse struct {
	OrderID   string            `json:"order_id"`
	Portfolio PortfolioSnapshot `json:"portfolio"`
}

// OrderListResponse wraps a user's order history.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

// OptionsChainResponse wraps the generated options chain for one underlying.
type OptionsChainResponse struct {
	Options []OptionQuote `json:"options"`
}
