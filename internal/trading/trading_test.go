package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeview/paper-trading-api/internal/market"
	"github.com/tradeview/paper-trading-api/internal/portfolio"
	"github.com/tradeview/paper-trading-api/internal/types"
)

// newTestService wires a service against an unrefreshed catalog, so every
// instrument still trades at its seed price (AAPL 150.00, GOOGL 2800.00, ...).
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	accounts := portfolio.NewStore(100000)
	service := NewService(accounts, market.NewCatalog(0.02), NewJournal())
	user := accounts.Register("Alice", "alice@example.com")
	return service, user.ID
}

func TestExecute_StockTrades(t *testing.T) {
	t.Run("buy debits cash and fills at the current price", func(t *testing.T) {
		service, userID := newTestService(t)

		order, snapshot, err := service.Execute(types.TradeRequest{
			UserID:    userID,
			Symbol:    "AAPL",
			Quantity:  10,
			TradeType: types.TradeTypeBuy,
			AssetType: types.AssetTypeStock,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, order.ID)
		assert.Equal(t, types.OrderStatusFilled, order.Status)
		assert.Equal(t, 150.00, order.Price)
		assert.Equal(t, types.AssetTypeStock, order.AssetType)
		assert.False(t, order.Timestamp.IsZero())

		assert.Equal(t, 98500.0, snapshot.Cash)
		assert.Equal(t, 10, snapshot.Positions["AAPL"].Quantity)
	})

	t.Run("round trip returns the cash at unchanged prices", func(t *testing.T) {
		service, userID := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 10,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		require.NoError(t, err)

		_, snapshot, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 10,
			TradeType: types.TradeTypeSell, AssetType: types.AssetTypeStock,
		})
		require.NoError(t, err)

		assert.Equal(t, 100000.0, snapshot.Cash)
		assert.Empty(t, snapshot.Positions)
	})

	t.Run("buy beyond available cash changes nothing", func(t *testing.T) {
		service, userID := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "GOOGL", Quantity: 100,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		require.ErrorIs(t, err, types.ErrInsufficientFunds)

		assert.Empty(t, service.Orders(userID), "rejected trades are not journaled")
	})

	t.Run("sell without a position changes nothing", func(t *testing.T) {
		service, userID := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 1,
			TradeType: types.TradeTypeSell, AssetType: types.AssetTypeStock,
		})
		require.ErrorIs(t, err, types.ErrInsufficientShares)
		assert.Empty(t, service.Orders(userID))
	})
}

func TestExecute_OptionTrades(t *testing.T) {
	t.Run("at-the-money call buy costs premium times the multiplier", func(t *testing.T) {
		service, userID := newTestService(t)

		order, snapshot, err := service.Execute(types.TradeRequest{
			UserID:       userID,
			Symbol:       "AAPL",
			Quantity:     2,
			TradeType:    types.TradeTypeBuy,
			AssetType:    types.AssetTypeOption,
			StrikePrice:  150.00,
			OptionType:   types.OptionTypeCall,
			DaysToExpiry: 30,
		})
		require.NoError(t, err)

		// premium = 150 × 0.1 × (30/365) = 1.23; cost = 2 × 1.23 × 100
		assert.Equal(t, 1.23, order.Price)
		assert.Equal(t, 99754.0, snapshot.Cash)

		position := snapshot.Positions["AAPL_call_150_30"]
		assert.Equal(t, 2, position.Quantity)
		assert.Equal(t, 1.23, position.AvgPrice)
	})

	t.Run("option round trip restores cash at unchanged prices", func(t *testing.T) {
		service, userID := newTestService(t)

		req := types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 2,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeOption,
			StrikePrice: 150.00, OptionType: types.OptionTypeCall, DaysToExpiry: 30,
		}
		_, _, err := service.Execute(req)
		require.NoError(t, err)

		req.TradeType = types.TradeTypeSell
		_, snapshot, err := service.Execute(req)
		require.NoError(t, err)

		assert.Equal(t, 100000.0, snapshot.Cash)
		assert.Empty(t, snapshot.Positions)
	})

	t.Run("selling unheld options reports insufficient options", func(t *testing.T) {
		service, userID := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 1,
			TradeType: types.TradeTypeSell, AssetType: types.AssetTypeOption,
			StrikePrice: 150.00, OptionType: types.OptionTypePut, DaysToExpiry: 7,
		})
		assert.ErrorIs(t, err, types.ErrInsufficientOptions)
	})

	t.Run("missing option type is rejected without touching the ledger", func(t *testing.T) {
		accounts := portfolio.NewStore(100000)
		catalog := market.NewCatalog(0.02)
		service := NewService(accounts, catalog, NewJournal())
		user := accounts.Register("Alice", "")

		_, _, err := service.Execute(types.TradeRequest{
			UserID: user.ID, Symbol: "AAPL", Quantity: 10,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		require.NoError(t, err)

		// Without an option type the position would collide with the stock
		// holding under the same key, at the premium and without the
		// contract multiplier.
		_, _, err = service.Execute(types.TradeRequest{
			UserID: user.ID, Symbol: "AAPL", Quantity: 1,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeOption,
			StrikePrice: 150.00, DaysToExpiry: 30,
		})
		require.ErrorIs(t, err, types.ErrInvalidOptionType)

		snapshot, err := accounts.Valuation(user.ID, catalog)
		require.NoError(t, err)
		assert.Equal(t, 98500.0, snapshot.Cash, "only the stock buy was debited")
		require.Len(t, snapshot.Positions, 1)
		position := snapshot.Positions["AAPL"]
		assert.Equal(t, types.AssetTypeStock, position.Type)
		assert.Equal(t, 10, position.Quantity)
		assert.Equal(t, 150.00, position.AvgPrice)
		assert.Len(t, service.Orders(user.ID), 1, "rejected trade is not journaled")
	})

	t.Run("expiry defaults to 30 days", func(t *testing.T) {
		service, userID := newTestService(t)

		_, snapshot, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "AAPL", Quantity: 1,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeOption,
			StrikePrice: 150.00, OptionType: types.OptionTypeCall,
		})
		require.NoError(t, err)
		assert.Contains(t, snapshot.Positions, "AAPL_call_150_30")
	})
}

func TestExecute_Preconditions(t *testing.T) {
	t.Run("unknown user wins over unknown instrument", func(t *testing.T) {
		service, _ := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: "nobody", Symbol: "ZZZZ", Quantity: 1,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		assert.ErrorIs(t, err, types.ErrUserNotFound)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		service, userID := newTestService(t)

		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: "ZZZZ", Quantity: 1,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		assert.ErrorIs(t, err, types.ErrInstrumentNotFound)
	})

	t.Run("quantity and asset type default to a single share", func(t *testing.T) {
		service, userID := newTestService(t)

		order, snapshot, err := service.Execute(types.TradeRequest{
			UserID:    userID,
			Symbol:    "AAPL",
			TradeType: types.TradeTypeBuy,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, order.Quantity)
		assert.Equal(t, types.AssetTypeStock, order.AssetType)
		assert.Equal(t, 99850.0, snapshot.Cash)
	})
}

func TestOrders(t *testing.T) {
	service, userID := newTestService(t)

	symbols := []string{"AAPL", "MSFT", "AAPL"}
	for _, symbol := range symbols {
		_, _, err := service.Execute(types.TradeRequest{
			UserID: userID, Symbol: symbol, Quantity: 1,
			TradeType: types.TradeTypeBuy, AssetType: types.AssetTypeStock,
		})
		require.NoError(t, err)
	}

	orders := service.Orders(userID)
	require.Len(t, orders, 3)
	for i, order := range orders {
		assert.Equal(t, symbols[i], order.Symbol, "insertion order preserved")
		assert.Equal(t, types.OrderStatusFilled, order.Status)
		assert.Equal(t, userID, order.UserID)
	}

	assert.Empty(t, service.Orders("someone-else"))
}
