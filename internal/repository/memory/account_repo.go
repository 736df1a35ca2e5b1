package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// AccountRepository stores deep copies of accounts. Callers mutate the copy
// they loaded and commit it through Update, which keeps each update
// all-or-nothing.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account %s", repository.ErrDuplicate, account.ID)
	}
	r.accounts[account.ID] = account.Clone()
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return account.Clone(), nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; !exists {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, account.ID)
	}
	r.accounts[account.ID] = account.Clone()
	return nil
}

func (r *AccountRepository) GetAllActive(ctx context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Account
	for _, account := range r.accounts {
		if account.Status == domain.AccountActive {
			result = append(result, account.Clone())
		}
	}
	return result, nil
}
