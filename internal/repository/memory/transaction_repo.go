package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// TransactionRepository is an append-only log with a per-account index that
// preserves insertion order.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	index        map[uuid.UUID][]uuid.UUID
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		index:        make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *TransactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[tx.ID]; exists {
		return fmt.Errorf("%w: transaction %s", repository.ErrDuplicate, tx.ID)
	}

	stored := *tx
	r.transactions[tx.ID] = &stored
	r.index[tx.AccountID] = append(r.index[tx.AccountID], tx.ID)
	if tx.DestinationAccountID != nil {
		r.index[*tx.DestinationAccountID] = append(r.index[*tx.DestinationAccountID], tx.ID)
	}
	return nil
}

func (r *TransactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(r.index[accountID]))
	for _, id := range r.index[accountID] {
		stored := *r.transactions[id]
		result = append(result, &stored)
	}
	return result, nil
}

func (r *TransactionRepository) GetByPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Transaction
	for _, id := range r.index[accountID] {
		tx := r.transactions[id]
		if !tx.Timestamp.Before(from) && !tx.Timestamp.After(to) {
			stored := *tx
			result = append(result, &stored)
		}
	}
	return result, nil
}
