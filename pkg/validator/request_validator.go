package validator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidAccountID = errors.New("invalid account id")
)

// RequestValidator checks request shape at the API boundary before any
// ledger state is touched. Domain rules (balances, limits, status) stay in
// the domain; this catches malformed input early.
type RequestValidator struct {
	maxAmount decimal.Decimal
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		maxAmount: decimal.NewFromInt(1_000_000),
	}
}

func (v *RequestValidator) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if amount.GreaterThan(v.maxAmount) {
		return fmt.Errorf("%w: amount exceeds maximum of %s", ErrInvalidAmount, v.maxAmount)
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount cannot be finer than cents", ErrInvalidAmount)
	}
	return nil
}

func (v *RequestValidator) ValidateAccountID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidAccountID, raw)
	}
	return id, nil
}

func (v *RequestValidator) ValidateTransfer(sourceID, destinationID string, amount decimal.Decimal) error {
	if _, err := v.ValidateAccountID(sourceID); err != nil {
		return err
	}
	if _, err := v.ValidateAccountID(destinationID); err != nil {
		return err
	}
	if sourceID == destinationID {
		return fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidAccountID)
	}
	return v.ValidateAmount(amount)
}
