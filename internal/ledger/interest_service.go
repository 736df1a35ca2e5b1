package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// InterestService accrues interest per the account's strategy and records the
// credit as a DEPOSIT transaction. Period gating (how often accrual runs) is
// the scheduler's concern, not this service's.
type InterestService struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	notifier     Notifier
	locks        *LockSet
	logger       *slog.Logger
}

func NewInterestService(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	notifier Notifier,
	locks *LockSet,
	logger *slog.Logger,
) *InterestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InterestService{
		accounts:     accounts,
		transactions: transactions,
		notifier:     notifier,
		locks:        locks,
		logger:       logger,
	}
}

func (s *InterestService) ApplyInterest(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	interest := account.ApplyInterest()
	if !interest.IsPositive() {
		return decimal.Zero, nil
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return decimal.Zero, fmt.Errorf("update account: %w", err)
	}
	tx := domain.NewDeposit(accountID, interest)
	if err := s.transactions.Append(ctx, tx); err != nil {
		return decimal.Zero, fmt.Errorf("record interest credit: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, tx)
	}

	s.logger.Info("interest applied",
		slog.String("account_id", accountID.String()),
		slog.String("interest", interest.String()),
		slog.String("balance", account.Balance.String()))
	return interest, nil
}

// ApplyInterestToAll runs accrual across every active account, skipping
// accounts that fail and reporting how many were credited.
func (s *InterestService) ApplyInterestToAll(ctx context.Context) (int, error) {
	accounts, err := s.accounts.GetAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active accounts: %w", err)
	}

	credited := 0
	for _, account := range accounts {
		interest, err := s.ApplyInterest(ctx, account.ID)
		if err != nil {
			s.logger.Error("interest accrual failed",
				slog.String("account_id", account.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if interest.IsPositive() {
			credited++
		}
	}
	return credited, nil
}
