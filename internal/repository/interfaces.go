package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// Update replaces the stored account atomically: either the full new
	// state is visible afterwards or the previous state is untouched.
	Update(ctx context.Context, account *domain.Account) error
	GetAllActive(ctx context.Context) ([]*domain.Account, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	// GetByAccountID returns the account's transactions in insertion order,
	// including transfers anchored on the account as source.
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
	GetByPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*domain.Transaction, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
