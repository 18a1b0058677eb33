package types

import "errors"

// Domain errors raised by the core services. They carry no transport
// concerns; the HTTP layer translates them into response codes.
var (
	ErrInvalidSymbol        = errors.New("unknown instrument symbol")
	ErrMissingPrice         = errors.New("limit order requires a positive limit price")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInsufficientHoldings = errors.New("insufficient holdings for sell")
	ErrNotFound             = errors.New("resource not found")
	ErrForbidden            = errors.New("order belongs to another client")
	ErrAlreadyTerminal      = errors.New("order is already executed or cancelled")
)
