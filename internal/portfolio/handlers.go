package portfolio

import (
	"github.com/gin-gonic/gin"
	"github.com/tradeview/paper-trading-api/internal/options"
	"github.com/tradeview/paper-trading-api/internal/types"
	"github.com/tradeview/paper-trading-api/pkg/response"
)

// GinHandlers contains HTTP handlers for account and portfolio endpoints
type GinHandlers struct {
	store  *Store
	prices options.PriceSource
}

// NewGinHandlers creates a new set of HTTP handlers for portfolio endpoints
func NewGinHandlers(store *Store, prices options.PriceSource) *GinHandlers {
	return &GinHandlers{
		store:  store,
		prices: prices,
	}
}

// RegisterHandler handles POST requests to create a new paper-trading user.
// Request body carries the user's name and email; both are optional.
func (h *GinHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		user := h.store.Register(req.Name, req.Email)

		response.Success(c, types.RegisterResponse{
			UserID:         user.ID,
			InitialBalance: user.InitialBalance,
		})
	}
}

// GetPortfolioHandler handles GET requests for a user's valued portfolio.
// URL parameter: user_id
func (h *GinHandlers) GetPortfolioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := h.store.Valuation(c.Param("user_id"), h.prices)
		response.Handle(c, snapshot, err)
	}
}

// ResetHandler handles POST requests to restore a portfolio to its initial
// state. URL parameter: user_id
func (h *GinHandlers) ResetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")

		if err := h.store.Reset(userID); err != nil {
			response.Handle(c, nil, err)
			return
		}

		snapshot, err := h.store.Valuation(userID, h.prices)
		response.Handle(c, snapshot, err)
	}
}
