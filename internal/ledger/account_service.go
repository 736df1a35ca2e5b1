package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// AccountService owns account lifecycle: creation with type defaults, limit
// configuration, security status and closing.
type AccountService struct {
	accounts   repository.AccountRepository
	locks      *LockSet
	rules      map[domain.AccountType]domain.TypeRules
	strategies map[domain.AccountType]domain.InterestStrategy
	logger     *slog.Logger
	now        func() time.Time
}

func NewAccountService(accounts repository.AccountRepository, locks *LockSet, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		accounts: accounts,
		locks:    locks,
		rules: map[domain.AccountType]domain.TypeRules{
			domain.AccountTypeChecking: domain.DefaultRules(domain.AccountTypeChecking),
			domain.AccountTypeSavings:  domain.DefaultRules(domain.AccountTypeSavings),
		},
		strategies: map[domain.AccountType]domain.InterestStrategy{
			domain.AccountTypeChecking: domain.NewFlatRateStrategy("0.01"),
			domain.AccountTypeSavings:  domain.NewFlatRateStrategy("0.03"),
		},
		logger: logger,
		now:    time.Now,
	}
}

// SetTypeRules overrides the creation defaults for one account type, usually
// from configuration.
func (s *AccountService) SetTypeRules(accountType domain.AccountType, rules domain.TypeRules, strategy domain.InterestStrategy) {
	s.rules[accountType] = rules
	s.strategies[accountType] = strategy
}

func (s *AccountService) CreateAccount(ctx context.Context, accountType string, initialDeposit decimal.Decimal) (*domain.Account, error) {
	parsed := domain.AccountType(strings.ToUpper(strings.TrimSpace(accountType)))
	rules, ok := s.rules[parsed]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccountType, accountType)
	}

	account, err := domain.NewAccountWithRules(parsed, initialDeposit, rules)
	if err != nil {
		return nil, err
	}
	account.InterestStrategy = s.strategies[parsed]

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created",
		slog.String("account_id", account.ID.String()),
		slog.String("account_type", string(account.Type)),
		slog.String("initial_deposit", initialDeposit.String()))
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return loadAccount(ctx, s.accounts, id)
}

// SetLimits attaches or replaces the account's spend ceiling.
func (s *AccountService) SetLimits(ctx context.Context, id uuid.UUID, dailyLimit, monthlyLimit decimal.Decimal) error {
	if dailyLimit.IsNegative() || monthlyLimit.IsNegative() {
		return fmt.Errorf("%w: limits cannot be negative", domain.ErrInvalidAmount)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, id)
	if err != nil {
		return err
	}
	account.LimitConstraint = &domain.LimitConstraint{
		DailyLimit:   dailyLimit,
		MonthlyLimit: monthlyLimit,
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("spend limits set",
		slog.String("account_id", id.String()),
		slog.String("daily_limit", dailyLimit.String()),
		slog.String("monthly_limit", monthlyLimit.String()))
	return nil
}

// ResetLimits clears the spend counters and stamps the rollover date.
func (s *AccountService) ResetLimits(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, id)
	if err != nil {
		return err
	}
	account.DailySpent = decimal.Zero
	account.MonthlySpent = decimal.Zero
	account.TransactionCount = 0
	account.ResetLimits(s.now().UTC())

	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// RecordFailedAttempt counts one failed attempt against the account. The
// updated security state is persisted even when the attempt triggers the
// lockout, and the lockout error is returned to the caller.
func (s *AccountService) RecordFailedAttempt(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, id)
	if err != nil {
		return err
	}
	attemptErr := account.IncrementFailedAttempts()
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if attemptErr != nil {
		s.logger.Warn("account locked",
			slog.String("account_id", id.String()),
			slog.Int("failed_attempts", account.FailedAttempts))
	}
	return attemptErr
}

func (s *AccountService) ResetSecurityStatus(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, id)
	if err != nil {
		return err
	}
	account.ResetSecurityStatus()
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("security status reset", slog.String("account_id", id.String()))
	return nil
}

func (s *AccountService) CloseAccount(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, id)
	if err != nil {
		return err
	}
	if err := account.Close(); err != nil {
		return err
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("account closed", slog.String("account_id", id.String()))
	return nil
}
