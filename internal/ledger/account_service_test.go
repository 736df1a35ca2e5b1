package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository/memory"
)

func newAccountFixture(t *testing.T) (*AccountService, *memory.AccountRepository) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	svc := NewAccountService(accounts, NewLockSet(), testLogger())
	return svc, accounts
}

func TestCreateAccount(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, "checking", d("200"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Type != domain.AccountTypeChecking {
		t.Errorf("expected CHECKING, got %s", account.Type)
	}
	if account.InterestStrategy == nil {
		t.Error("expected a default interest strategy to be attached")
	}

	loaded, err := accounts.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("account was not persisted: %v", err)
	}
	if !loaded.Balance.Equal(d("200")) {
		t.Errorf("expected balance 200, got %s", loaded.Balance)
	}
}

func TestCreateAccount_UnknownType(t *testing.T) {
	svc, _ := newAccountFixture(t)
	_, err := svc.CreateAccount(context.Background(), "premium", d("200"))
	if !errors.Is(err, ErrUnknownAccountType) {
		t.Errorf("expected ErrUnknownAccountType, got %v", err)
	}
}

func TestCreateAccount_SavingsBelowMinimum(t *testing.T) {
	svc, _ := newAccountFixture(t)
	_, err := svc.CreateAccount(context.Background(), "SAVINGS", d("10"))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateAccount_ConfiguredRules(t *testing.T) {
	svc, _ := newAccountFixture(t)
	svc.SetTypeRules(domain.AccountTypeChecking, domain.TypeRules{
		MinimumBalance:       d("10"),
		OverdraftLimit:       d("500"),
		MaxDailyTransactions: 5,
	}, domain.NewFlatRateStrategy("0.02"))

	account, err := svc.CreateAccount(context.Background(), "checking", d("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.OverdraftLimit.Equal(d("500")) {
		t.Errorf("expected overdraft 500, got %s", account.OverdraftLimit)
	}
	if account.MaxDailyTransactions != 5 {
		t.Errorf("expected max daily transactions 5, got %d", account.MaxDailyTransactions)
	}
}

func TestSetLimits(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "1000")

	if err := svc.SetLimits(ctx, account.ID, d("100"), d("500")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := accounts.GetByID(ctx, account.ID)
	if loaded.LimitConstraint == nil {
		t.Fatal("expected a limit constraint to be attached")
	}
	if !loaded.LimitConstraint.DailyLimit.Equal(d("100")) {
		t.Errorf("expected daily limit 100, got %s", loaded.LimitConstraint.DailyLimit)
	}
}

func TestSetLimits_Negative(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "1000")

	err := svc.SetLimits(context.Background(), account.ID, d("-1"), d("500"))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestResetLimits(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "1000")

	spent, _ := accounts.GetByID(ctx, account.ID)
	spent.DailySpent = d("50")
	spent.MonthlySpent = d("200")
	spent.TransactionCount = 3
	_ = accounts.Update(ctx, spent)

	if err := svc.ResetLimits(ctx, account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := accounts.GetByID(ctx, account.ID)
	if !loaded.DailySpent.IsZero() || !loaded.MonthlySpent.IsZero() || loaded.TransactionCount != 0 {
		t.Errorf("expected cleared counters, got daily=%s monthly=%s count=%d",
			loaded.DailySpent, loaded.MonthlySpent, loaded.TransactionCount)
	}
}

func TestRecordFailedAttempt_LocksOnThird(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	for i := 0; i < 2; i++ {
		if err := svc.RecordFailedAttempt(ctx, account.ID); err != nil {
			t.Fatalf("attempt %d should not lock: %v", i+1, err)
		}
	}
	if err := svc.RecordFailedAttempt(ctx, account.ID); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("third attempt should lock, got %v", err)
	}

	// The locked state must be persisted even though the call errored.
	loaded, _ := accounts.GetByID(ctx, account.ID)
	if !loaded.Locked {
		t.Error("expected locked state to be persisted")
	}
	if loaded.FailedAttempts != 3 {
		t.Errorf("expected 3 failed attempts, got %d", loaded.FailedAttempts)
	}
}

func TestResetSecurityStatus(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	for i := 0; i < 3; i++ {
		_ = svc.RecordFailedAttempt(ctx, account.ID)
	}
	if err := svc.ResetSecurityStatus(ctx, account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := accounts.GetByID(ctx, account.ID)
	if loaded.Locked || loaded.FailedAttempts != 0 {
		t.Errorf("expected an unlocked account, got locked=%v attempts=%d",
			loaded.Locked, loaded.FailedAttempts)
	}
}

func TestCloseAccount(t *testing.T) {
	svc, accounts := newAccountFixture(t)
	ctx := context.Background()
	account := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	if err := svc.CloseAccount(ctx, account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := accounts.GetByID(ctx, account.ID)
	if loaded.Status != domain.AccountClosed {
		t.Errorf("expected CLOSED, got %s", loaded.Status)
	}

	// Closing twice is a status error.
	if err := svc.CloseAccount(ctx, account.ID); !errors.Is(err, domain.ErrInvalidAccountStatus) {
		t.Errorf("expected ErrInvalidAccountStatus, got %v", err)
	}
}

func TestGetAccount_Missing(t *testing.T) {
	svc, _ := newAccountFixture(t)
	_, err := svc.GetAccount(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
