package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerStore is the part of the store the ledger needs.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, amount core.Money, category string) (bool, error)
	UpdateAccountTransaction(ctx context.Context, accountID, id int64, amount core.Money, category string) (bool, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	DeleteAccountTransaction(ctx context.Context, accountID, id int64) (bool, error)
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	BudgetSpend(ctx context.Context, accountID int64) ([]storage.BudgetSpend, error)
}

// ReportStore aggregates transactions. Generation changes whenever the
// underlying data does.
type ReportStore interface {
	SumByKind(ctx context.Context, f storage.TransactionFilter) (core.Report, error)
	Generation() int64
}

type AccountStore interface {
	CreateAccount(ctx context.Context, username, passwordHash string) (core.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (core.Account, error)
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

var (
	_ LedgerStore    = (*storage.Store)(nil)
	_ BudgetStore    = (*storage.Store)(nil)
	_ ReportStore    = (*storage.Store)(nil)
	_ AccountStore   = (*storage.Store)(nil)
	_ EventPublisher = (*amqp.Client)(nil)
)
