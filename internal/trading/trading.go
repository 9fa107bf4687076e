package trading

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tradeview/paper-trading-api/internal/market"
	"github.com/tradeview/paper-trading-api/internal/options"
	"github.com/tradeview/paper-trading-api/internal/portfolio"
	"github.com/tradeview/paper-trading-api/internal/types"
	"github.com/tradeview/paper-trading-api/pkg/response"
)

// Service validates and executes trades against the account store at the
// instantaneously-read market price, recording every fill in the journal.
type Service struct {
	accounts *portfolio.Store
	catalog  *market.Catalog
	journal  *Journal
}

// NewService creates a new trading service.
func NewService(accounts *portfolio.Store, catalog *market.Catalog, journal *Journal) *Service {
	return &Service{
		accounts: accounts,
		catalog:  catalog,
		journal:  journal,
	}
}

// Execute runs a buy/sell instruction to completion. Preconditions are
// checked in order, first failure wins: user, then instrument, then
// funds/shares/options. A failed trade leaves all state unchanged. On
// success the filled order is journaled and returned together with the
// post-trade portfolio snapshot.
func (s *Service) Execute(req types.TradeRequest) (*types.Order, *types.PortfolioSnapshot, error) {
	req.ApplyDefaults()

	logger := log.With().
		Str("user_id", req.UserID).
		Str("symbol", req.Symbol).
		Str("trade_type", req.TradeType).
		Str("asset_type", req.AssetType).
		Int("quantity", req.Quantity).
		Logger()

	if !s.accounts.Exists(req.UserID) {
		return nil, nil, types.ErrUserNotFound
	}

	price, ok := s.catalog.Price(req.Symbol)
	if !ok {
		return nil, nil, types.ErrInstrumentNotFound
	}

	// Stocks trade at the current price; options at the premium derived
	// from it and the requested contract terms. An option trade without a
	// valid option type would key its position like a stock holding, so it
	// is rejected before anything is booked.
	key := types.StockKey(req.Symbol)
	executionPrice := price
	if req.AssetType == types.AssetTypeOption {
		if req.OptionType != types.OptionTypeCall && req.OptionType != types.OptionTypePut {
			return nil, nil, types.ErrInvalidOptionType
		}
		key = types.OptionKey(req.Symbol, req.OptionType, req.StrikePrice, req.DaysToExpiry)
		executionPrice = options.Premium(price, req.StrikePrice, req.DaysToExpiry, req.OptionType)
	}

	var err error
	switch req.TradeType {
	case types.TradeTypeBuy:
		err = s.accounts.Buy(req.UserID, key, req.Quantity, executionPrice)
	case types.TradeTypeSell:
		err = s.accounts.Sell(req.UserID, key, req.Quantity, executionPrice)
	default:
		err = fmt.Errorf("unsupported trade type: %s", req.TradeType)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("trade rejected")
		return nil, nil, err
	}

	order := types.Order{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Price:     executionPrice,
		TradeType: req.TradeType,
		AssetType: req.AssetType,
		Timestamp: time.Now(),
		Status:    types.OrderStatusFilled,
	}
	s.journal.Append(order)

	snapshot, err := s.accounts.Valuation(req.UserID, s.catalog)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().
		Str("order_id", order.ID).
		Float64("price", order.Price).
		Float64("cash", snapshot.Cash).
		Msg("trade executed")

	return &order, snapshot, nil
}

// Orders returns a user's order history in execution order.
func (s *Service) Orders(userID string) []types.Order {
	return s.journal.ListByUser(userID)
}

// GinHandlers contains HTTP handlers for trading endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for trading endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// PlaceTradeHandler handles POST requests to execute trades.
// Request body should contain the trade instruction.
func (h *GinHandlers) PlaceTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, snapshot, err := h.service.Execute(req)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, types.TradeResponse{
			OrderID:   order.ID,
			Portfolio: *snapshot,
		})
	}
}

// GetOrdersHandler handles GET requests for a user's order history.
// URL parameter: user_id
func (h *GinHandlers) GetOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders := h.service.Orders(c.Param("user_id"))

		response.Success(c, types.OrderListResponse{
			Orders: orders,
		})
	}
}
