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

// TransferService moves funds between two accounts as one logical unit. Both
// account locks are held for the duration, acquired in identifier order, and
// a committed debit is reversed if any later step fails.
type TransferService struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	notifier     Notifier
	locks        *LockSet
	logger       *slog.Logger
	now          func() time.Time
}

func NewTransferService(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	notifier Notifier,
	locks *LockSet,
	logger *slog.Logger,
) *TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		accounts:     accounts,
		transactions: transactions,
		notifier:     notifier,
		locks:        locks,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *TransferService) Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if sourceID == destinationID {
		return nil, ErrSameAccount
	}

	unlock := s.locks.LockPair(sourceID, destinationID)
	defer unlock()

	source, err := loadAccount(ctx, s.accounts, sourceID)
	if err != nil {
		return nil, err
	}
	destination, err := loadAccount(ctx, s.accounts, destinationID)
	if err != nil {
		return nil, err
	}

	sourceBefore := source.Clone()
	destinationBefore := destination.Clone()

	now := s.now().UTC()
	source.ResetLimits(now)
	destination.ResetLimits(now)

	if err := source.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := destination.Deposit(amount); err != nil {
		// Nothing persisted yet; dropping the mutated copies leaves the
		// ledger untouched.
		return nil, err
	}

	if err := s.accounts.Update(ctx, source); err != nil {
		return nil, fmt.Errorf("persist debit leg: %w", err)
	}
	if err := s.accounts.Update(ctx, destination); err != nil {
		if revErr := s.accounts.Update(ctx, sourceBefore); revErr != nil {
			return nil, fmt.Errorf("%w: credit leg failed (%v), debit reversal failed: %v",
				ErrReversalFailed, err, revErr)
		}
		s.logger.Warn("transfer credit leg failed, debit reversed",
			slog.String("source_account_id", sourceID.String()),
			slog.String("destination_account_id", destinationID.String()),
			slog.String("amount", amount.String()))
		return nil, fmt.Errorf("persist credit leg: %w", err)
	}

	tx := domain.NewTransfer(sourceID, destinationID, amount)
	if err := s.transactions.Append(ctx, tx); err != nil {
		revSrc := s.accounts.Update(ctx, sourceBefore)
		revDst := s.accounts.Update(ctx, destinationBefore)
		if revSrc != nil || revDst != nil {
			return nil, fmt.Errorf("%w: recording failed (%v), leg reversal failed: src=%v dst=%v",
				ErrReversalFailed, err, revSrc, revDst)
		}
		return nil, fmt.Errorf("record transfer: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, tx)
	}

	s.logger.Info("transfer completed",
		slog.String("transaction_id", tx.ID.String()),
		slog.String("source_account_id", sourceID.String()),
		slog.String("destination_account_id", destinationID.String()),
		slog.String("amount", amount.String()))
	return tx, nil
}
