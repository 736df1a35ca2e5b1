package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

const maxFailedAttempts = 3

// TypeRules carries the per-type parameters fixed at account creation.
// Account variants are data, not subtypes.
type TypeRules struct {
	MinimumBalance       decimal.Decimal
	OverdraftLimit       decimal.Decimal
	MaxDailyTransactions int
}

func DefaultRules(accountType AccountType) TypeRules {
	if accountType == AccountTypeSavings {
		return TypeRules{
			MinimumBalance:       decimal.NewFromInt(100),
			OverdraftLimit:       decimal.Zero,
			MaxDailyTransactions: 10,
		}
	}
	return TypeRules{
		MinimumBalance:       decimal.NewFromInt(50),
		OverdraftLimit:       decimal.NewFromInt(100),
		MaxDailyTransactions: 20,
	}
}

// Account is the aggregate root of the ledger. Every balance or counter
// mutation goes through its methods; callers serialize access per account.
type Account struct {
	ID                   uuid.UUID
	Type                 AccountType
	Status               AccountStatus
	Balance              decimal.Decimal
	MinimumBalance       decimal.Decimal
	OverdraftLimit       decimal.Decimal
	MaxDailyTransactions int
	InterestStrategy     InterestStrategy
	LimitConstraint      *LimitConstraint
	DailySpent           decimal.Decimal
	MonthlySpent         decimal.Decimal
	TransactionCount     int
	LastResetDate        time.Time
	FailedAttempts       int
	Locked               bool
	CreatedAt            time.Time
}

func NewAccount(accountType AccountType, initialDeposit decimal.Decimal) (*Account, error) {
	return NewAccountWithRules(accountType, initialDeposit, DefaultRules(accountType))
}

func NewAccountWithRules(accountType AccountType, initialDeposit decimal.Decimal, rules TypeRules) (*Account, error) {
	if initialDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidAmount)
	}
	if accountType == AccountTypeSavings && initialDeposit.LessThan(rules.MinimumBalance) {
		return nil, fmt.Errorf("%w: savings account requires an initial deposit of at least %s",
			ErrInvalidAmount, rules.MinimumBalance)
	}

	now := time.Now().UTC()
	return &Account{
		ID:                   uuid.New(),
		Type:                 accountType,
		Status:               AccountActive,
		Balance:              initialDeposit,
		MinimumBalance:       rules.MinimumBalance,
		OverdraftLimit:       rules.OverdraftLimit,
		MaxDailyTransactions: rules.MaxDailyTransactions,
		DailySpent:           decimal.Zero,
		MonthlySpent:         decimal.Zero,
		LastResetDate:        now,
		CreatedAt:            now,
	}, nil
}

func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be positive", ErrInvalidAmount)
	}
	if a.Locked {
		return fmt.Errorf("%w: account %s", ErrAccountLocked, a.ID)
	}
	if a.Status != AccountActive {
		return fmt.Errorf("%w: cannot deposit to a %s account", ErrInvalidAccountStatus, a.Status)
	}
	if a.LimitConstraint != nil {
		if err := a.LimitConstraint.CheckDeposit(a, amount); err != nil {
			return err
		}
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidAmount)
	}
	if a.Locked {
		return fmt.Errorf("%w: account %s", ErrAccountLocked, a.ID)
	}
	if a.TransactionCount >= a.MaxDailyTransactions {
		return fmt.Errorf("%w: daily transaction count limit of %d reached",
			ErrTransactionLimitExceeded, a.MaxDailyTransactions)
	}
	if a.Status != AccountActive {
		return fmt.Errorf("%w: cannot withdraw from a %s account", ErrInvalidAccountStatus, a.Status)
	}

	if amount.GreaterThan(a.availableBalance()) {
		return fmt.Errorf("%w: withdrawal of %s exceeds available balance %s",
			ErrInsufficientFunds, amount, a.availableBalance())
	}
	if a.Type == AccountTypeSavings && a.Balance.Sub(amount).LessThan(a.MinimumBalance) {
		return fmt.Errorf("%w: balance cannot fall below the minimum of %s",
			ErrInsufficientFunds, a.MinimumBalance)
	}
	if a.LimitConstraint != nil {
		if err := a.LimitConstraint.CheckWithdrawal(a, amount); err != nil {
			return err
		}
	}

	a.Balance = a.Balance.Sub(amount)
	a.DailySpent = a.DailySpent.Add(amount)
	a.MonthlySpent = a.MonthlySpent.Add(amount)
	a.TransactionCount++
	return nil
}

// ApplyInterest credits the strategy's accrual and returns the credited
// amount. Period gating is the caller's responsibility: applying twice
// accrues twice.
func (a *Account) ApplyInterest() decimal.Decimal {
	if a.InterestStrategy == nil || a.Status != AccountActive {
		return decimal.Zero
	}
	interest := a.InterestStrategy.CalculateInterest(a.Balance)
	a.Balance = a.Balance.Add(interest)
	return interest
}

// ResetLimits rolls the spend counters over calendar boundaries. A month or
// year change clears both counters; a day change within the same month clears
// only the daily ones.
func (a *Account) ResetLimits(currentDate time.Time) {
	if a.LastResetDate.IsZero() {
		a.LastResetDate = currentDate
		return
	}

	if currentDate.Year() != a.LastResetDate.Year() || currentDate.Month() != a.LastResetDate.Month() {
		a.DailySpent = decimal.Zero
		a.MonthlySpent = decimal.Zero
		a.TransactionCount = 0
	} else if currentDate.Day() != a.LastResetDate.Day() {
		a.DailySpent = decimal.Zero
		a.TransactionCount = 0
	}
	a.LastResetDate = currentDate
}

// IncrementFailedAttempts records one failed attempt and locks the account on
// the third, returning ErrAccountLocked on the triggering call.
func (a *Account) IncrementFailedAttempts() error {
	a.FailedAttempts++
	if a.FailedAttempts >= maxFailedAttempts {
		a.Locked = true
		return fmt.Errorf("%w: account %s locked after %d failed attempts",
			ErrAccountLocked, a.ID, a.FailedAttempts)
	}
	return nil
}

func (a *Account) ResetSecurityStatus() {
	a.FailedAttempts = 0
	a.Locked = false
}

// Close transitions the account to CLOSED. Accounts are never deleted.
func (a *Account) Close() error {
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: account is already closed", ErrInvalidAccountStatus)
	}
	a.Status = AccountClosed
	return nil
}

func (a *Account) availableBalance() decimal.Decimal {
	if a.Type == AccountTypeChecking {
		return a.Balance.Add(a.OverdraftLimit)
	}
	return a.Balance
}

// Clone returns a deep copy so repository reads and writes cannot leak
// aggregate state across callers.
func (a *Account) Clone() *Account {
	clone := *a
	if a.LimitConstraint != nil {
		constraint := *a.LimitConstraint
		clone.LimitConstraint = &constraint
	}
	return &clone
}
