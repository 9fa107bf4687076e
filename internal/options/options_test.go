package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeview/paper-trading-api/internal/types"
)

func TestPremium(t *testing.T) {
	t.Run("at-the-money call is pure time value", func(t *testing.T) {
		// 150 × 0.1 × (30/365) = 1.2328... → 1.23
		premium := Premium(150.00, 150.00, 30, types.OptionTypeCall)
		assert.Equal(t, 1.23, premium)
	})

	t.Run("in-the-money call includes intrinsic value", func(t *testing.T) {
		premium := Premium(160.00, 150.00, 30, types.OptionTypeCall)
		assert.Equal(t, 11.32, premium) // 10 intrinsic + 1.32 time value
	})

	t.Run("in-the-money put includes intrinsic value", func(t *testing.T) {
		premium := Premium(140.00, 150.00, 30, types.OptionTypePut)
		assert.Equal(t, 11.15, premium) // 10 intrinsic + 1.15 time value
	})

	t.Run("out-of-the-money put is pure time value", func(t *testing.T) {
		premium := Premium(160.00, 150.00, 30, types.OptionTypePut)
		assert.Equal(t, 1.32, premium)
	})

	t.Run("zero days to expiry keeps the time decay floor", func(t *testing.T) {
		// 100 × 0.1 × (1/36.5) = 0.2739... → 0.27
		premium := Premium(100.00, 100.00, 0, types.OptionTypeCall)
		assert.Equal(t, 0.27, premium)
	})

	t.Run("premium never goes below one cent", func(t *testing.T) {
		for _, optionType := range []string{types.OptionTypeCall, types.OptionTypePut} {
			assert.GreaterOrEqual(t, Premium(0, 0, 0, optionType), 0.01)
			assert.GreaterOrEqual(t, Premium(0.01, 1000, 0, optionType), 0.01)
		}
	})

	t.Run("premium is monotonic in days to expiry", func(t *testing.T) {
		days := []int{0, 7, 14, 30, 60, 180, 365}
		for _, optionType := range []string{types.OptionTypeCall, types.OptionTypePut} {
			previous := 0.0
			for _, d := range days {
				premium := Premium(150.00, 155.00, d, optionType)
				assert.GreaterOrEqual(t, premium, previous,
					"premium should not shrink as expiry grows (%s, %d days)", optionType, d)
				previous = premium
			}
		}
	})
}

func TestChain(t *testing.T) {
	underlying := 150.00
	chain := Chain("AAPL", underlying)

	t.Run("contains exactly 40 quotes", func(t *testing.T) {
		require.Len(t, chain, 40)
	})

	t.Run("splits evenly into calls and puts", func(t *testing.T) {
		calls, puts := 0, 0
		for _, quote := range chain {
			switch quote.OptionType {
			case types.OptionTypeCall:
				calls++
			case types.OptionTypePut:
				puts++
			}
		}
		assert.Equal(t, 20, calls)
		assert.Equal(t, 20, puts)
	})

	t.Run("spans the full expiry and strike grid", func(t *testing.T) {
		expiries := make(map[int]bool)
		strikes := make(map[float64]bool)
		for _, quote := range chain {
			expiries[quote.ExpiryDays] = true
			strikes[quote.StrikePrice] = true
		}

		assert.Equal(t, map[int]bool{7: true, 14: true, 30: true, 60: true}, expiries)
		assert.Equal(t, map[float64]bool{
			135.00: true, 142.50: true, 150.00: true, 157.50: true, 165.00: true,
		}, strikes)
	})

	t.Run("every quote is priced against the underlying", func(t *testing.T) {
		for _, quote := range chain {
			assert.Equal(t, "AAPL", quote.Symbol)
			assert.Equal(t, underlying, quote.UnderlyingPrice)
			assert.Equal(t,
				Premium(underlying, quote.StrikePrice, quote.ExpiryDays, quote.OptionType),
				quote.Price)
		}
	})
}
