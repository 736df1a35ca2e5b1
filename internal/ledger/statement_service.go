package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"account_ledger/internal/domain"
	"account_ledger/internal/repository"
)

// Statement is an account's transactions over a date range, ready for
// rendering.
type Statement struct {
	Account      *domain.Account
	Transactions []*domain.Transaction
	From         time.Time
	To           time.Time
}

type StatementService struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

func NewStatementService(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	logger *slog.Logger,
) *StatementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatementService{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
	}
}

func (s *StatementService) GenerateStatement(ctx context.Context, accountID uuid.UUID, from, to time.Time) (*Statement, error) {
	account, err := loadAccount(ctx, s.accounts, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.GetByPeriod(ctx, accountID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &Statement{
		Account:      account,
		Transactions: txs,
		From:         from.UTC(),
		To:           to.UTC(),
	}, nil
}

// WriteCSV renders the statement with one row per transaction.
func (st *Statement) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Account ID",
		"Account Type",
		"Balance",
		"Transaction ID",
		"Type",
		"Amount",
		"Timestamp",
		"Destination Account",
	}); err != nil {
		return err
	}

	for _, tx := range st.Transactions {
		destination := ""
		if tx.DestinationAccountID != nil {
			destination = tx.DestinationAccountID.String()
		}
		if err := writer.Write([]string{
			st.Account.ID.String(),
			string(st.Account.Type),
			st.Account.Balance.StringFixed(2),
			tx.ID.String(),
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.Timestamp.Format(time.RFC3339),
			destination,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
