package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

var (
	ErrSameAccount        = errors.New("source and destination accounts are the same")
	ErrUnknownAccountType = errors.New("unknown account type")
	// ErrReversalFailed marks a transfer whose debit leg could not be
	// reversed after the credit leg failed. The ledger is inconsistent and
	// the error must surface to the operator.
	ErrReversalFailed = errors.New("transfer reversal failed")
)

// Notifier is the best-effort notification sink. Implementations must not
// block the calling operation; failures are theirs to log, not to surface.
type Notifier interface {
	Notify(ctx context.Context, tx *domain.Transaction)
}

func loadAccount(ctx context.Context, accounts repository.AccountRepository, id uuid.UUID) (*domain.Account, error) {
	account, err := accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return account, nil
}
