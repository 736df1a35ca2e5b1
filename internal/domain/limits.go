package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LimitConstraint is a stateless spend ceiling. It reads the account's running
// counters but never mutates them; the account owns the counters.
type LimitConstraint struct {
	DailyLimit   decimal.Decimal
	MonthlyLimit decimal.Decimal
}

func (c LimitConstraint) CheckWithdrawal(account *Account, amount decimal.Decimal) error {
	if account.DailySpent.Add(amount).GreaterThan(c.DailyLimit) {
		return fmt.Errorf("%w: daily withdrawal limit %s exceeded", ErrTransactionLimitExceeded, c.DailyLimit)
	}
	if account.MonthlySpent.Add(amount).GreaterThan(c.MonthlyLimit) {
		return fmt.Errorf("%w: monthly withdrawal limit %s exceeded", ErrTransactionLimitExceeded, c.MonthlyLimit)
	}
	return nil
}

// CheckDeposit always passes: spend limits constrain outflow, not inflow.
func (c LimitConstraint) CheckDeposit(account *Account, amount decimal.Decimal) error {
	return nil
}
