package domain

import "errors"

var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidAccountStatus     = errors.New("invalid account status")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrTransactionLimitExceeded = errors.New("transaction limit exceeded")
	ErrAccountLocked            = errors.New("account locked")
	ErrAccountNotFound          = errors.New("account not found")
)
