package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestBudgetService_CheckBudget(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	budgets := NewBudgetService(store, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	if _, err := budgets.SetBudget(ctx, acct, "Food", "100"); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := budgets.SetBudget(ctx, acct, "Travel", "50"); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if _, err := budgets.SetBudget(ctx, acct, "Rent", "10"); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	ledger.AddTransaction(ctx, acct, "Expense", "60", "Food", "2024-01-01")
	ledger.AddTransaction(ctx, acct, "Expense", "50.01", "Food", "2024-02-01")
	ledger.AddTransaction(ctx, acct, "Expense", "10", "Rent", "2024-02-01")

	got, err := budgets.CheckBudget(ctx, acct)
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}

	want := []struct {
		category string
		spent    int64
		exceeded bool
		message  string
	}{
		{"Food", 11001, true, "Alert: You have exceeded your budget for Food!"},
		{"Travel", 0, false, "You are within the budget for Travel."},
		{"Rent", 1000, false, "You are within the budget for Rent."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d statuses, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Category != w.category || got[i].Spent.Cents != w.spent || got[i].Exceeded != w.exceeded {
			t.Errorf("status %d = %+v, want %+v", i, got[i], w)
		}
		if got[i].Message() != w.message {
			t.Errorf("message %d = %q, want %q", i, got[i].Message(), w.message)
		}
	}
}

func TestBudgetService_IncomeCountsTowardSpend(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, nil, quietLogger())
	budgets := NewBudgetService(store, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	budgets.SetBudget(ctx, acct, "Side", "10")
	ledger.AddTransaction(ctx, acct, "Income", "15", "Side", "2024-05-05")

	got, err := budgets.CheckBudget(ctx, acct)
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}
	if len(got) != 1 || !got[0].Exceeded || got[0].Spent.Cents != 1500 {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestBudgetService_DuplicateCategory(t *testing.T) {
	store := newTestStore(t)
	budgets := NewBudgetService(store, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	first, _ := budgets.SetBudget(ctx, acct, "Food", "100")
	second, _ := budgets.SetBudget(ctx, acct, "Food", "200")
	if first == second {
		t.Fatalf("second budget reused id %d", first)
	}

	got, err := budgets.CheckBudget(ctx, acct)
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}
	if len(got) != 2 || got[0].BudgetID != first || got[1].BudgetID != second {
		t.Fatalf("expected one status per row, got %+v", got)
	}
}

func TestBudgetService_Empty(t *testing.T) {
	store := newTestStore(t)
	budgets := NewBudgetService(store, quietLogger())

	got, err := budgets.CheckBudget(context.Background(), mustAccountID(t, store, "alice"))
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no statuses, got %+v", got)
	}
}

func TestBudgetService_SetBudgetValidation(t *testing.T) {
	store := newTestStore(t)
	budgets := NewBudgetService(store, quietLogger())
	ctx := context.Background()
	acct := mustAccountID(t, store, "alice")

	tests := []struct {
		name, category, limit string
		want                  error
	}{
		{"negative limit", "Food", "-1", core.ErrInvalidAmount},
		{"garbage limit", "Food", "lots", core.ErrInvalidAmount},
		{"empty category", "", "10", core.ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := budgets.SetBudget(ctx, acct, tt.category, tt.limit); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := budgets.SetBudget(ctx, 404, "Food", "1"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
