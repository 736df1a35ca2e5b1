package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDeposit  TransactionType = "DEPOSIT"
	TypeWithdraw TransactionType = "WITHDRAW"
	TypeTransfer TransactionType = "TRANSFER"
)

// Transaction is the immutable record of one committed balance-affecting
// event. Amount is always positive; direction is carried by Type.
type Transaction struct {
	ID                   uuid.UUID       `json:"id"`
	AccountID            uuid.UUID       `json:"account_id"`
	Type                 TransactionType `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Timestamp            time.Time       `json:"timestamp"`
	DestinationAccountID *uuid.UUID      `json:"destination_account_id,omitempty"`
}

func NewDeposit(accountID uuid.UUID, amount decimal.Decimal) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      TypeDeposit,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

func NewWithdrawal(accountID uuid.UUID, amount decimal.Decimal) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      TypeWithdraw,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

func NewTransfer(sourceAccountID, destinationAccountID uuid.UUID, amount decimal.Decimal) *Transaction {
	return &Transaction{
		ID:                   uuid.New(),
		AccountID:            sourceAccountID,
		Type:                 TypeTransfer,
		Amount:               amount,
		Timestamp:            time.Now().UTC(),
		DestinationAccountID: &destinationAccountID,
	}
}
