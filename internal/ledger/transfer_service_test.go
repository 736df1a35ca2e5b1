package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository/memory"
)

func newTransferFixture(t *testing.T) (*TransferService, *memory.AccountRepository, *memory.TransactionRepository, *recordingNotifier) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	transactions := memory.NewTransactionRepository()
	notifier := &recordingNotifier{}
	svc := NewTransferService(accounts, transactions, notifier, NewLockSet(), testLogger())
	return svc, accounts, transactions, notifier
}

func TestTransfer(t *testing.T) {
	svc, accounts, transactions, notifier := newTransferFixture(t)
	ctx := context.Background()

	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")
	destination := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	tx, err := svc.Transfer(ctx, source.ID, destination.ID, d("50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mustBalance(t, accounts, source.ID, "150")
	mustBalance(t, accounts, destination.ID, "150")

	if tx.Type != domain.TypeTransfer {
		t.Errorf("expected TRANSFER, got %s", tx.Type)
	}
	if tx.AccountID != source.ID {
		t.Errorf("expected source %s, got %s", source.ID, tx.AccountID)
	}
	if tx.DestinationAccountID == nil || *tx.DestinationAccountID != destination.ID {
		t.Errorf("expected destination %s, got %v", destination.ID, tx.DestinationAccountID)
	}

	recorded, _ := transactions.GetByAccountID(ctx, source.ID)
	if len(recorded) != 1 {
		t.Errorf("expected exactly one recorded transaction, got %d", len(recorded))
	}
	if notifier.count() != 1 {
		t.Errorf("expected one notification, got %d", notifier.count())
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	svc, accounts, transactions, _ := newTransferFixture(t)
	ctx := context.Background()

	source := seedAccount(t, accounts, domain.AccountTypeSavings, "200")
	destination := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	_, err := svc.Transfer(ctx, source.ID, destination.ID, d("300"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	mustBalance(t, accounts, source.ID, "200")
	mustBalance(t, accounts, destination.ID, "100")

	recorded, _ := transactions.GetByAccountID(ctx, source.ID)
	if len(recorded) != 0 {
		t.Errorf("failed transfer must not be recorded, got %d transactions", len(recorded))
	}
}

func TestTransfer_SameAccount(t *testing.T) {
	svc, accounts, _, _ := newTransferFixture(t)
	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")

	_, err := svc.Transfer(context.Background(), source.ID, source.ID, d("50"))
	if !errors.Is(err, ErrSameAccount) {
		t.Errorf("expected ErrSameAccount, got %v", err)
	}
}

func TestTransfer_MissingAccount(t *testing.T) {
	svc, accounts, _, _ := newTransferFixture(t)
	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")

	_, err := svc.Transfer(context.Background(), source.ID, uuid.New(), d("50"))
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	mustBalance(t, accounts, source.ID, "200")
}

func TestTransfer_LockedSource(t *testing.T) {
	svc, accounts, _, _ := newTransferFixture(t)
	ctx := context.Background()

	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")
	destination := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	locked, _ := accounts.GetByID(ctx, source.ID)
	locked.Locked = true
	_ = accounts.Update(ctx, locked)

	_, err := svc.Transfer(ctx, source.ID, destination.ID, d("50"))
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
	mustBalance(t, accounts, destination.ID, "100")
}

func TestTransfer_ClosedDestination(t *testing.T) {
	svc, accounts, _, _ := newTransferFixture(t)
	ctx := context.Background()

	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")
	destination := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	closed, _ := accounts.GetByID(ctx, destination.ID)
	_ = closed.Close()
	_ = accounts.Update(ctx, closed)

	_, err := svc.Transfer(ctx, source.ID, destination.ID, d("50"))
	if !errors.Is(err, domain.ErrInvalidAccountStatus) {
		t.Fatalf("expected ErrInvalidAccountStatus, got %v", err)
	}
	// The debit leg was never persisted.
	mustBalance(t, accounts, source.ID, "200")
}

func TestTransfer_RecordFailureReversesBothLegs(t *testing.T) {
	accounts := memory.NewAccountRepository()
	transactions := &failingTransactionRepository{memory.NewTransactionRepository()}
	svc := NewTransferService(accounts, transactions, nil, NewLockSet(), testLogger())
	ctx := context.Background()

	source := seedAccount(t, accounts, domain.AccountTypeChecking, "200")
	destination := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	_, err := svc.Transfer(ctx, source.ID, destination.ID, d("50"))
	if !errors.Is(err, errAppendFailed) {
		t.Fatalf("expected the append failure to surface, got %v", err)
	}
	if errors.Is(err, ErrReversalFailed) {
		t.Fatalf("reversal succeeded, error must not be fatal: %v", err)
	}

	mustBalance(t, accounts, source.ID, "200")
	mustBalance(t, accounts, destination.ID, "100")
}

func TestTransfer_CreditPersistFailureReversesDebit(t *testing.T) {
	base := memory.NewAccountRepository()
	// One update allowed: the debit leg commits, the credit leg fails, the
	// reversal then fails too because the budget is spent.
	accounts := &flakyAccountRepository{AccountRepository: base, updatesBefore: 1}
	svc := NewTransferService(accounts, memory.NewTransactionRepository(), nil, NewLockSet(), testLogger())
	ctx := context.Background()

	source := seedAccount(t, base, domain.AccountTypeChecking, "200")
	destination := seedAccount(t, base, domain.AccountTypeChecking, "100")

	_, err := svc.Transfer(ctx, source.ID, destination.ID, d("50"))
	if !errors.Is(err, ErrReversalFailed) {
		t.Fatalf("expected ErrReversalFailed, got %v", err)
	}
}
