package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerService validates and records income and expense transactions and
// announces changes over AMQP when a publisher is configured.
type LedgerService struct {
	store     LedgerStore
	publisher EventPublisher
	logger    *log.Logger
}

// NewLedgerService creates a ledger. publisher may be nil.
func NewLedgerService(store LedgerStore, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// AddTransaction records a transaction for accountID and returns its id.
// kind is matched case-insensitively; amount is a non-negative decimal.
func (s *LedgerService) AddTransaction(ctx context.Context, accountID int64, kind, amount, category, date string) (int64, error) {
	k, err := core.ParseKind(kind)
	if err != nil {
		return 0, err
	}
	m, err := core.ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	t := core.Transaction{
		AccountID: accountID,
		Kind:      k,
		Amount:    m,
		Category:  category,
		Date:      date,
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpCreate).
			WithTransaction(id, string(k), m.Cents, category, date).
			WithAccount(accountID).ToSlice()...)
	s.publish(ctx, id, accountID, amqp.ActionCreated)
	return id, nil
}

// UpdateTransaction changes amount and category of any transaction. It
// reports false when no transaction has that id.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, amount, category string) (bool, error) {
	m, err := parseUpdate(amount, category)
	if err != nil {
		return false, err
	}
	ok, err := s.store.UpdateTransaction(ctx, id, m, category)
	if err != nil {
		return false, fmt.Errorf("update transaction %d: %w", id, err)
	}
	if ok {
		s.logUpdate(ctx, id, 0, m, category)
		s.publish(ctx, id, 0, amqp.ActionUpdated)
	}
	return ok, nil
}

// UpdateOwnTransaction is UpdateTransaction restricted to transactions owned
// by accountID. Another account's transaction reports false.
func (s *LedgerService) UpdateOwnTransaction(ctx context.Context, accountID, id int64, amount, category string) (bool, error) {
	m, err := parseUpdate(amount, category)
	if err != nil {
		return false, err
	}
	ok, err := s.store.UpdateAccountTransaction(ctx, accountID, id, m, category)
	if err != nil {
		return false, fmt.Errorf("update transaction %d: %w", id, err)
	}
	if ok {
		s.logUpdate(ctx, id, accountID, m, category)
		s.publish(ctx, id, accountID, amqp.ActionUpdated)
	}
	return ok, nil
}

// DeleteTransaction removes any transaction by id. Deleting an absent id
// reports false.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if ok {
		s.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldTxID, id)
		s.publish(ctx, id, 0, amqp.ActionDeleted)
	}
	return ok, nil
}

// DeleteOwnTransaction removes a transaction only if accountID owns it.
func (s *LedgerService) DeleteOwnTransaction(ctx context.Context, accountID, id int64) (bool, error) {
	ok, err := s.store.DeleteAccountTransaction(ctx, accountID, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if ok {
		s.logger.InfoContext(ctx, "Transaction deleted",
			log.FieldOperation, log.OpDelete, log.FieldTxID, id, log.FieldAccountID, accountID)
		s.publish(ctx, id, accountID, amqp.ActionDeleted)
	}
	return ok, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns the account's transactions, optionally narrowed
// to a month and/or year.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID int64, month, year string) ([]core.Transaction, error) {
	if month != "" {
		if err := core.ValidateMonth(month); err != nil {
			return nil, err
		}
	}
	if year != "" {
		if err := core.ValidateYear(year); err != nil {
			return nil, err
		}
	}
	txs, err := s.store.ListTransactions(ctx, storage.TransactionFilter{
		AccountID: accountID,
		Month:     month,
		Year:      year,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func parseUpdate(amount, category string) (core.Money, error) {
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Money{}, err
	}
	if err := core.ValidateCategory(category); err != nil {
		return core.Money{}, err
	}
	return m, nil
}

func (s *LedgerService) logUpdate(ctx context.Context, id, accountID int64, m core.Money, category string) {
	fields := log.LogFields{
		log.FieldTxID:        id,
		log.FieldAmountCents: m.Cents,
		log.FieldCategory:    category,
	}.WithOperation(log.OpUpdate)
	if accountID != 0 {
		fields = fields.WithAccount(accountID)
	}
	s.logger.InfoContext(ctx, "Transaction updated", fields.ToSlice()...)
}

// publish is best effort: the ledger change is already committed.
func (s *LedgerService) publish(ctx context.Context, id, accountID int64, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(id, accountID, action)); err != nil {
		s.logger.LogError(ctx, "Failed to publish ledger event", err, log.OpPublish,
			log.LogFields{log.FieldTxID: id, "action": action}.WithErrorType(log.ErrorTypeNetwork))
	}
}
