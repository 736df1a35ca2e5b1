package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
	"account_ledger/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seedAccount(t *testing.T, repo repository.AccountRepository, accountType domain.AccountType, balance string) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount(accountType, d(balance))
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}

func mustBalance(t *testing.T, repo repository.AccountRepository, id uuid.UUID, expected string) {
	t.Helper()
	account, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load account %s: %v", id, err)
	}
	if !account.Balance.Equal(d(expected)) {
		t.Errorf("account %s: expected balance %s, got %s", id, expected, account.Balance)
	}
}

// recordingNotifier captures notified transactions for assertions.
type recordingNotifier struct {
	mu  sync.Mutex
	txs []*domain.Transaction
}

func (n *recordingNotifier) Notify(ctx context.Context, tx *domain.Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.txs = append(n.txs, tx)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.txs)
}

// failingTransactionRepository rejects every append.
type failingTransactionRepository struct {
	*memory.TransactionRepository
}

var errAppendFailed = errors.New("append failed")

func (r *failingTransactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	return errAppendFailed
}

// flakyAccountRepository succeeds for a fixed number of updates, then fails.
type flakyAccountRepository struct {
	*memory.AccountRepository
	mu            sync.Mutex
	updatesBefore int
}

var errUpdateFailed = errors.New("update failed")

func (r *flakyAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updatesBefore <= 0 {
		return errUpdateFailed
	}
	r.updatesBefore--
	return r.AccountRepository.Update(ctx, account)
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}
