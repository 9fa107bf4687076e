package portfolio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tradeview/paper-trading-api/internal/options"
	"github.com/tradeview/paper-trading-api/internal/types"
	"github.com/tradeview/paper-trading-api/pkg/money"
)

// Options trade in contracts of 100 underlying shares.
const contractMultiplier = 100

// account is one user's ledger: virtual cash plus open positions. Each
// account carries its own lock so trades on one user never block another,
// and a single trade validates and mutates under one critical section.
type account struct {
	mu        sync.Mutex
	user      types.User
	cash      float64
	positions map[types.PositionKey]*types.Position
}

// Store owns every registered user's ledger. Accounts live for the process
// lifetime and are only ever mutated through trade execution or reset.
type Store struct {
	mu             sync.RWMutex
	accounts       map[string]*account
	initialBalance float64
}

// NewStore creates an empty account store. Every registered account starts
// with initialBalance in virtual cash.
func NewStore(initialBalance float64) *Store {
	return &Store{
		accounts:       make(map[string]*account),
		initialBalance: initialBalance,
	}
}

// Register creates a new user with a fresh ledger and returns the user record.
func (s *Store) Register(name, email string) types.User {
	if name == "" {
		name = "Trader"
	}

	user := types.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		CreatedAt:      time.Now(),
		InitialBalance: s.initialBalance,
	}

	s.mu.Lock()
	s.accounts[user.ID] = &account{
		user:      user,
		cash:      s.initialBalance,
		positions: make(map[types.PositionKey]*types.Position),
	}
	s.mu.Unlock()

	log.Info().
		Str("user_id", user.ID).
		Str("name", user.Name).
		Float64("initial_balance", user.InitialBalance).
		Msg("registered paper trading user")

	return user
}

// Exists reports whether a user is registered.
func (s *Store) Exists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[userID]
	return ok
}

func (s *Store) account(userID string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return a, nil
}

// Reset restores a user's ledger to its initial state: full starting cash
// and no positions. Order history is unaffected.
func (s *Store) Reset(userID string) error {
	a, err := s.account(userID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cash = s.initialBalance
	a.positions = make(map[types.PositionKey]*types.Position)
	a.mu.Unlock()

	log.Info().Str("user_id", userID).Msg("portfolio reset")
	return nil
}

// Buy debits the cost of quantity units at price and creates or tops up the
// position for key. Option costs carry the contract multiplier. Topping up
// keeps the original entry price; the stored average is not recomputed.
// Returns ErrInsufficientFunds without mutating anything when cash is short.
func (s *Store) Buy(userID string, key types.PositionKey, quantity int, price float64) error {
	a, err := s.account(userID)
	if err != nil {
		return err
	}

	cost := money.Round2(float64(quantity) * price * unitSize(key))

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cash < cost {
		return types.ErrInsufficientFunds
	}
	a.cash = money.Round2(a.cash - cost)

	if position, ok := a.positions[key]; ok {
		position.Quantity += quantity
	} else {
		a.positions[key] = newPosition(key, quantity, price)
	}

	return nil
}

// Sell credits the proceeds of quantity units at price and decrements the
// position for key, removing it entirely once the quantity reaches zero.
// Selling more than held fails without mutating anything.
func (s *Store) Sell(userID string, key types.PositionKey, quantity int, price float64) error {
	a, err := s.account(userID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	position, ok := a.positions[key]
	if !ok || position.Quantity < quantity {
		if key.IsOption() {
			return types.ErrInsufficientOptions
		}
		return types.ErrInsufficientShares
	}

	proceeds := money.Round2(float64(quantity) * price * unitSize(key))
	a.cash = money.Round2(a.cash + proceeds)

	position.Quantity -= quantity
	if position.Quantity == 0 {
		delete(a.positions, key)
	}

	return nil
}

// Valuation computes the live value of a user's portfolio: cash plus every
// position marked to the current market. Options are repriced with their
// stored strike and days to expiry against the live underlying price;
// positions whose underlying has left the catalog are skipped. Totals are
// derived on every read and never cached.
func (s *Store) Valuation(userID string, prices options.PriceSource) (*types.PortfolioSnapshot, error) {
	a, err := s.account(userID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	total := a.cash
	positions := make(map[string]types.Position, len(a.positions))

	for key, position := range a.positions {
		positions[key.String()] = *position

		price, ok := prices.Price(key.Symbol)
		if !ok {
			continue
		}

		if key.IsOption() {
			premium := options.Premium(price, key.Strike, key.DaysToExpiry, key.OptionType)
			total += float64(position.Quantity) * premium * contractMultiplier
		} else {
			total += float64(position.Quantity) * price
		}
	}

	totalValue := money.Round2(total)
	pnl := money.Round2(totalValue - s.initialBalance)

	return &types.PortfolioSnapshot{
		Cash:          a.cash,
		Positions:     positions,
		TotalValue:    totalValue,
		PnL:           pnl,
		PnLPercentage: money.Round2(pnl / s.initialBalance * 100),
	}, nil
}

func unitSize(key types.PositionKey) float64 {
	if key.IsOption() {
		return contractMultiplier
	}
	return 1
}

func newPosition(key types.PositionKey, quantity int, price float64) *types.Position {
	if key.IsOption() {
		return &types.Position{
			Quantity:     quantity,
			Type:         types.AssetTypeOption,
			Symbol:       key.Symbol,
			StrikePrice:  key.Strike,
			OptionType:   key.OptionType,
			DaysToExpiry: key.DaysToExpiry,
			AvgPrice:     price,
		}
	}
	return &types.Position{
		Quantity: quantity,
		Type:     types.AssetTypeStock,
		Symbol:   key.Symbol,
		AvgPrice: price,
	}
}
