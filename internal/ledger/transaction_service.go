package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// TransactionService executes single-account deposits and withdrawals:
// load, mutate under the account's lock, persist, record, notify.
type TransactionService struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	notifier     Notifier
	locks        *LockSet
	logger       *slog.Logger
	now          func() time.Time
}

func NewTransactionService(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	notifier Notifier,
	locks *LockSet,
	logger *slog.Logger,
) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		notifier:     notifier,
		locks:        locks,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *TransactionService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.Deposit(amount); err != nil {
		return nil, err
	}

	tx := domain.NewDeposit(accountID, amount)
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if err := s.transactions.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	s.notify(ctx, tx)

	s.logger.Info("deposit completed",
		slog.String("account_id", accountID.String()),
		slog.String("amount", amount.String()),
		slog.String("transaction_id", tx.ID.String()))
	return tx, nil
}

func (s *TransactionService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := loadAccount(ctx, s.accounts, accountID)
	if err != nil {
		return nil, err
	}

	// Roll the period counters over before the spend checks see them.
	account.ResetLimits(s.now().UTC())
	if err := account.Withdraw(amount); err != nil {
		return nil, err
	}

	tx := domain.NewWithdrawal(accountID, amount)
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if err := s.transactions.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("record withdrawal: %w", err)
	}
	s.notify(ctx, tx)

	s.logger.Info("withdrawal completed",
		slog.String("account_id", accountID.String()),
		slog.String("amount", amount.String()),
		slog.String("transaction_id", tx.ID.String()))
	return tx, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	if _, err := loadAccount(ctx, s.accounts, accountID); err != nil {
		return nil, err
	}
	return s.transactions.GetByAccountID(ctx, accountID)
}

func (s *TransactionService) notify(ctx context.Context, tx *domain.Transaction) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, tx)
	}
}
