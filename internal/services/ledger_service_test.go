package services

import (
	"context"
	"errors"
	"slices"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func TestLedgerService_AddTransaction(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	id, err := ledger.AddTransaction(ctx, acct, "expense", "50.005", "Food", "2024-03-15")
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	got, err := ledger.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	want := core.Transaction{
		ID:        id,
		AccountID: acct,
		Kind:      core.KindExpense,
		Amount:    core.Money{Cents: 5001},
		Category:  "Food",
		Date:      "2024-03-15",
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLedgerService_AddTransaction_Validation(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	tests := []struct {
		name     string
		kind     string
		amount   string
		category string
		date     string
		want     error
	}{
		{"unknown kind", "Transfer", "10", "Food", "2024-01-01", core.ErrInvalidKind},
		{"negative amount", "Expense", "-5", "Food", "2024-01-01", core.ErrInvalidAmount},
		{"non-numeric amount", "Expense", "ten", "Food", "2024-01-01", core.ErrInvalidAmount},
		{"blank category", "Income", "10", "   ", "2024-01-01", core.ErrEmptyCategory},
		{"bad date format", "Income", "10", "Salary", "15/03/2024", core.ErrInvalidDate},
		{"impossible date", "Income", "10", "Salary", "2024-02-30", core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.AddTransaction(ctx, acct, tt.kind, tt.amount, tt.category, tt.date)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected validation class, got %v", err)
			}
		})
	}

	txs, err := ledger.ListTransactions(ctx, acct, "", "")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("rejected input reached the store: %+v", txs)
	}
}

func TestLedgerService_ZeroAmountAccepted(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	acct := mustAccountID(t, store, "alice")

	if _, err := ledger.AddTransaction(context.Background(), acct, "Income", "0", "Gift", "2024-01-01"); err != nil {
		t.Fatalf("zero amount rejected: %v", err)
	}
}

func TestLedgerService_UnknownAccount(t *testing.T) {
	ledger := NewLedgerService(newTestStore(t), nil, quietLogger())

	_, err := ledger.AddTransaction(context.Background(), 99, "Income", "1", "Gift", "2024-01-01")
	if !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerService_Ownership(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	ctx := context.Background()
	alice := mustAccountID(t, store, "alice")
	bob := mustAccountID(t, store, "bob")

	id, err := ledger.AddTransaction(ctx, alice, "Expense", "12.50", "Food", "2024-01-10")
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	ok, err := ledger.UpdateOwnTransaction(ctx, bob, id, "1", "Hijack")
	if err != nil || ok {
		t.Fatalf("guarded update by other account = %v, %v", ok, err)
	}
	ok, err = ledger.DeleteOwnTransaction(ctx, bob, id)
	if err != nil || ok {
		t.Fatalf("guarded delete by other account = %v, %v", ok, err)
	}

	// The permissive variants do not look at the owner.
	ok, err = ledger.UpdateTransaction(ctx, id, "20", "Groceries")
	if err != nil || !ok {
		t.Fatalf("permissive update = %v, %v", ok, err)
	}
	got, _ := ledger.GetTransaction(ctx, id)
	if got.Amount.Cents != 2000 || got.Category != "Groceries" || got.AccountID != alice {
		t.Fatalf("unexpected row after update: %+v", got)
	}

	ok, err = ledger.DeleteTransaction(ctx, id)
	if err != nil || !ok {
		t.Fatalf("permissive delete = %v, %v", ok, err)
	}
	ok, err = ledger.DeleteTransaction(ctx, id)
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v", ok, err)
	}
}

func TestLedgerService_UpdateValidation(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")
	id, _ := ledger.AddTransaction(ctx, acct, "Expense", "5", "Food", "2024-01-10")

	if _, err := ledger.UpdateOwnTransaction(ctx, acct, id, "-1", "Food"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ledger.UpdateTransaction(ctx, id, "1", ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected empty category error, got %v", err)
	}

	got, _ := ledger.GetTransaction(ctx, id)
	if got.Amount.Cents != 500 || got.Category != "Food" {
		t.Fatalf("rejected update modified row: %+v", got)
	}
}

func TestLedgerService_ListTransactions(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	for _, date := range []string{"2024-03-01", "2024-04-01", "2023-03-01"} {
		if _, err := ledger.AddTransaction(ctx, acct, "Expense", "1", "Food", date); err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}
	}

	tests := []struct {
		month, year string
		want        int
	}{
		{"", "", 3},
		{"03", "", 2},
		{"", "2024", 2},
		{"03", "2024", 1},
	}
	for _, tt := range tests {
		txs, err := ledger.ListTransactions(ctx, acct, tt.month, tt.year)
		if err != nil {
			t.Fatalf("ListTransactions(%q, %q): %v", tt.month, tt.year, err)
		}
		if len(txs) != tt.want {
			t.Errorf("ListTransactions(%q, %q) = %d rows, want %d", tt.month, tt.year, len(txs), tt.want)
		}
	}

	if _, err := ledger.ListTransactions(ctx, acct, "13", ""); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestLedgerService_PublishesEvents(t *testing.T) {
	store := newTestStore(t)
	pub := &recordingPublisher{}
	ledger := NewLedgerService(store, pub, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	id, err := ledger.AddTransaction(ctx, acct, "Income", "100", "Salary", "2024-01-31")
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	ledger.UpdateOwnTransaction(ctx, acct, id, "110", "Salary")
	ledger.UpdateOwnTransaction(ctx, acct, id+1, "1", "Nothing")
	ledger.DeleteOwnTransaction(ctx, acct, id)

	want := []string{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}
	if got := pub.actions(); !slices.Equal(got, want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	if pub.events[0].ID != id || pub.events[0].AccountID != acct {
		t.Fatalf("unexpected event payload: %+v", pub.events[0])
	}
}

func TestLedgerService_PublishFailureIsNotFatal(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, &recordingPublisher{err: errBrokerDown}, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	id, err := ledger.AddTransaction(ctx, acct, "Income", "1", "Gift", "2024-01-01")
	if err != nil {
		t.Fatalf("publish failure surfaced: %v", err)
	}
	if _, err := ledger.GetTransaction(ctx, id); err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
}
