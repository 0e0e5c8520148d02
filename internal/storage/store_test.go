package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustAccount(t *testing.T, s *Store, username string) core.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("CreateAccount(%q): %v", username, err)
	}
	return a
}

func mustTransaction(t *testing.T, s *Store, tx core.Transaction) int64 {
	t.Helper()
	id, err := s.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return id
}

func TestCreateAccount_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAccount(t, s, "alice")

	_, err := s.CreateAccount(ctx, "alice", "other")
	if !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	got, err := s.GetAccountByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccountByUsername: %v", err)
	}
	if got != first {
		t.Fatalf("first account changed: %+v vs %+v", got, first)
	}

	// Usernames are case-sensitive.
	if _, err := s.CreateAccount(ctx, "Alice", "hash"); err != nil {
		t.Fatalf("expected distinct username to succeed, got %v", err)
	}
}

func TestCreateTransaction_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		AccountID: 42,
		Kind:      core.KindExpense,
		Amount:    core.Money{Cents: 100},
		Category:  "Food",
		Date:      "2024-03-01",
	})
	if !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	_, err = s.CreateBudget(context.Background(), core.Budget{AccountID: 42, Category: "Food", Limit: core.Money{Cents: 1}})
	if !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for budget, got %v", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "alice")

	want := core.Transaction{
		AccountID: a.ID,
		Kind:      core.KindIncome,
		Amount:    core.Money{Cents: 123456},
		Category:  "Salary",
		Date:      "2024-03-25",
	}
	id := mustTransaction(t, s, want)
	want.ID = id

	got, err := s.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	ok, err := s.UpdateTransaction(ctx, id, core.Money{Cents: 99}, "Bonus")
	if err != nil || !ok {
		t.Fatalf("UpdateTransaction = %v, %v", ok, err)
	}
	got, _ = s.GetTransaction(ctx, id)
	want.Amount = core.Money{Cents: 99}
	want.Category = "Bonus"
	if got != want {
		t.Fatalf("after update got %+v, want %+v", got, want)
	}

	ok, err = s.UpdateTransaction(ctx, id+100, core.Money{Cents: 1}, "x")
	if err != nil || ok {
		t.Fatalf("UpdateTransaction on missing id = %v, %v", ok, err)
	}

	ok, err = s.DeleteTransaction(ctx, id)
	if err != nil || !ok {
		t.Fatalf("first DeleteTransaction = %v, %v", ok, err)
	}
	ok, err = s.DeleteTransaction(ctx, id)
	if err != nil || ok {
		t.Fatalf("second DeleteTransaction = %v, %v", ok, err)
	}
	if _, err := s.GetTransaction(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAccountScopedMutations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustAccount(t, s, "alice")
	bob := mustAccount(t, s, "bob")

	id := mustTransaction(t, s, core.Transaction{
		AccountID: alice.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 500}, Category: "Food", Date: "2024-01-02",
	})

	if ok, err := s.UpdateAccountTransaction(ctx, bob.ID, id, core.Money{Cents: 1}, "Hack"); err != nil || ok {
		t.Fatalf("foreign update = %v, %v", ok, err)
	}
	if ok, err := s.DeleteAccountTransaction(ctx, bob.ID, id); err != nil || ok {
		t.Fatalf("foreign delete = %v, %v", ok, err)
	}
	if ok, err := s.UpdateAccountTransaction(ctx, alice.ID, id, core.Money{Cents: 700}, "Food"); err != nil || !ok {
		t.Fatalf("own update = %v, %v", ok, err)
	}
	if ok, err := s.DeleteAccountTransaction(ctx, alice.ID, id); err != nil || !ok {
		t.Fatalf("own delete = %v, %v", ok, err)
	}
}

func TestSumByKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "alice")
	other := mustAccount(t, s, "bob")

	for _, tx := range []core.Transaction{
		{AccountID: a.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 5000}, Category: "Food", Date: "2024-03-02"},
		{AccountID: a.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 10000}, Category: "Rent", Date: "2024-03-31"},
		{AccountID: a.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 777}, Category: "Food", Date: "2024-04-01"},
		{AccountID: a.ID, Kind: core.KindIncome, Amount: core.Money{Cents: 900}, Category: "Gift", Date: "2023-03-15"},
		{AccountID: other.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 1}, Category: "Food", Date: "2024-03-10"},
	} {
		mustTransaction(t, s, tx)
	}

	report, err := s.SumByKind(ctx, TransactionFilter{AccountID: a.ID, Month: "03", Year: "2024"})
	if err != nil {
		t.Fatalf("SumByKind: %v", err)
	}
	if len(report) != 1 || report[core.KindExpense].Cents != 15000 {
		t.Fatalf("march report = %v", report)
	}

	report, err = s.SumByKind(ctx, TransactionFilter{AccountID: a.ID, Year: "2024"})
	if err != nil {
		t.Fatalf("SumByKind: %v", err)
	}
	if len(report) != 1 || report[core.KindExpense].Cents != 15777 {
		t.Fatalf("2024 report = %v", report)
	}

	report, err = s.SumByKind(ctx, TransactionFilter{AccountID: a.ID, Year: "1999"})
	if err != nil {
		t.Fatalf("SumByKind: %v", err)
	}
	if report == nil || len(report) != 0 {
		t.Fatalf("expected empty report, got %v", report)
	}
}

func TestSumByKind_MalformedDateIgnored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "alice")

	// Rows written behind the service's back, e.g. by a restored dump.
	err := s.Update(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, type, amount_cents, category, date) VALUES (?, 'Expense', 100, 'Food', '03/15/2024')`, a.ID)
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	report, err := s.SumByKind(ctx, TransactionFilter{AccountID: a.ID, Month: "03", Year: "2024"})
	if err != nil {
		t.Fatalf("SumByKind: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("expected malformed date to be skipped, got %v", report)
	}
}

func TestBudgetSpend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "alice")

	food1, _ := s.CreateBudget(ctx, core.Budget{AccountID: a.ID, Category: "Food", Limit: core.Money{Cents: 10000}})
	travel, _ := s.CreateBudget(ctx, core.Budget{AccountID: a.ID, Category: "Travel", Limit: core.Money{Cents: 500}})
	food2, _ := s.CreateBudget(ctx, core.Budget{AccountID: a.ID, Category: "Food", Limit: core.Money{Cents: 20000}})

	mustTransaction(t, s, core.Transaction{AccountID: a.ID, Kind: core.KindExpense, Amount: core.Money{Cents: 6000}, Category: "Food", Date: "2024-01-01"})
	mustTransaction(t, s, core.Transaction{AccountID: a.ID, Kind: core.KindIncome, Amount: core.Money{Cents: 4000}, Category: "Food", Date: "2024-02-01"})

	rows, err := s.BudgetSpend(ctx, a.ID)
	if err != nil {
		t.Fatalf("BudgetSpend: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	wantIDs := []int64{food1, travel, food2}
	wantSpent := []int64{10000, 0, 10000}
	for i, r := range rows {
		if r.Budget.ID != wantIDs[i] || r.Spent.Cents != wantSpent[i] {
			t.Errorf("row %d = %+v", i, r)
		}
	}
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	before := s.Generation()

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password) VALUES ('ghost', 'x')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := s.GetAccountByUsername(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}
	if s.Generation() != before {
		t.Fatalf("generation moved on failed update")
	}
}

func TestGeneration_AdvancesOnWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g0 := s.Generation()
	a := mustAccount(t, s, "alice")
	g1 := s.Generation()
	if g1 <= g0 {
		t.Fatalf("generation did not advance on insert")
	}

	if ok, _ := s.DeleteTransaction(ctx, 999); ok {
		t.Fatalf("unexpected delete")
	}
	if s.Generation() != g1 {
		t.Fatalf("generation advanced on no-op delete")
	}

	mustTransaction(t, s, core.Transaction{AccountID: a.ID, Kind: core.KindIncome, Amount: core.Money{}, Category: "x", Date: "2024-01-01"})
	if s.Generation() <= g1 {
		t.Fatalf("generation did not advance on transaction insert")
	}
}

func TestMigrateSchema_ReopenIsNoOp(t *testing.T) {
	s := newTestStore(t)
	mustAccount(t, s, "alice")

	version, err := MigrateSchema(s.Path())
	if err != nil {
		t.Fatalf("MigrateSchema on a migrated ledger: %v", err)
	}
	if version != 1 {
		t.Fatalf("schema version = %d, want 1", version)
	}
	if _, err := s.GetAccountByUsername(context.Background(), "alice"); err != nil {
		t.Fatalf("data lost after re-running migrations: %v", err)
	}
}
