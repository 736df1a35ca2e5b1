package ledger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository/memory"
)

func TestGenerateStatement(t *testing.T) {
	accounts := memory.NewAccountRepository()
	transactions := memory.NewTransactionRepository()
	svc := NewStatementService(accounts, transactions, testLogger())
	ctx := context.Background()

	account := seedAccount(t, accounts, domain.AccountTypeChecking, "100")

	inside := domain.NewDeposit(account.ID, d("50"))
	inside.Timestamp = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	alsoInside := domain.NewWithdrawal(account.ID, d("20"))
	alsoInside.Timestamp = time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)
	outside := domain.NewDeposit(account.ID, d("999"))
	outside.Timestamp = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	for _, tx := range []*domain.Transaction{inside, alsoInside, outside} {
		if err := transactions.Append(ctx, tx); err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}
	}

	from := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	statement, err := svc.GenerateStatement(ctx, account.ID, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statement.Transactions) != 2 {
		t.Fatalf("expected 2 transactions in the statement, got %d", len(statement.Transactions))
	}
}

func TestGenerateStatement_MissingAccount(t *testing.T) {
	svc := NewStatementService(memory.NewAccountRepository(), memory.NewTransactionRepository(), testLogger())
	_, err := svc.GenerateStatement(context.Background(), uuid.New(), time.Time{}, time.Now())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestStatement_WriteCSV(t *testing.T) {
	accounts := memory.NewAccountRepository()
	transactions := memory.NewTransactionRepository()
	svc := NewStatementService(accounts, transactions, testLogger())
	ctx := context.Background()

	account := seedAccount(t, accounts, domain.AccountTypeChecking, "100")
	destination := uuid.New()
	transfer := domain.NewTransfer(account.ID, destination, d("25"))
	if err := transactions.Append(ctx, transfer); err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}

	statement, err := svc.GenerateStatement(ctx, account.ID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := statement.WriteCSV(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Account ID,Account Type,Balance") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "TRANSFER") {
		t.Errorf("expected a TRANSFER row, got: %s", lines[1])
	}
	if !strings.Contains(lines[1], destination.String()) {
		t.Errorf("expected the destination account in the row, got: %s", lines[1])
	}
	if !strings.Contains(lines[1], "25.00") {
		t.Errorf("expected the amount with two decimals, got: %s", lines[1])
	}
}
