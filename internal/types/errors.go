package types

import "errors"

// Validation failures surfaced verbatim to the transport layer. None of
// these are retried or recovered internally; a failed operation leaves all
// state unchanged.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInstrumentNotFound  = errors.New("stock not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrInsufficientOptions = errors.New("insufficient options")
	ErrInvalidOptionType   = errors.New("invalid option type")
)
