package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"fintrack/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is the SQLite-backed persistent store for accounts, transactions and
// budgets. Ordinary operations share the read side of mu; View and Update
// hold the write side so whole-store work never interleaves with a writer.
type Store struct {
	db      *sql.DB
	queries *Queries
	path    string

	mu         sync.RWMutex
	generation atomic.Int64
}

// TransactionFilter narrows ListTransactions and SumByKind. Zero-valued
// fields match everything; Month ("01".."12") and Year ("2024") are compared
// against the calendar components of the stored date text.
type TransactionFilter struct {
	AccountID int64
	Kind      core.Kind
	Category  string
	Month     string
	Year      string
}

func (f TransactionFilter) params() ListTransactionsParams {
	return ListTransactionsParams{
		UserID:   f.AccountID,
		Type:     string(f.Kind),
		Category: f.Category,
		Month:    f.Month,
		Year:     f.Year,
	}
}

// BudgetSpend is a budget row together with the summed amount of the
// account's transactions in that category.
type BudgetSpend struct {
	Budget core.Budget
	Spent  core.Money
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := MigrateSchema(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Generation changes after every successful write. Readers use it to tell
// whether derived data is still current.
func (s *Store) Generation() int64 {
	return s.generation.Load()
}

func (s *Store) bump() {
	s.generation.Add(1)
}

// View runs fn inside one SQL transaction while no other store operation can
// run. The transaction is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(tx)
}

// Update runs fn inside one SQL transaction while no other store operation
// can run. The transaction commits only if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.bump()
	return nil
}

// CreateAccount inserts a new account. A taken username yields
// core.ErrUsernameTaken.
func (s *Store) CreateAccount(ctx context.Context, username, passwordHash string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.queries.CreateUser(ctx, CreateUserParams{Username: username, Password: passwordHash})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", translate(err))
	}
	s.bump()

	slog.InfoContext(ctx, "Account saved to SQLite", "id", u.ID, "username", u.Username)
	return accountFromRow(u), nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.queries.GetUser(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, translate(err))
	}
	return accountFromRow(u), nil
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account by username: %w", translate(err))
	}
	return accountFromRow(u), nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]core.Account, len(rows))
	for i, u := range rows {
		accounts[i] = accountFromRow(u)
	}
	return accounts, nil
}

// CreateTransaction inserts t and returns its id. An AccountID that does not
// name an account yields core.ErrAccountNotFound.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := s.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      t.AccountID,
		Type:        string(t.Kind),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Date:        t.Date,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", translate(err))
	}
	s.bump()

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"account_id", row.UserID,
		"type", row.Type,
		"amount_cents", row.AmountCents,
		"category", row.Category,
		"date", row.Date)

	return row.ID, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := s.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, translate(err))
	}
	return transactionFromRow(row), nil
}

func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queries.ListTransactions(ctx, f.params())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, len(rows))
	for i, r := range rows {
		txs[i] = transactionFromRow(r)
	}
	return txs, nil
}

// UpdateTransaction rewrites amount and category of transaction id. It
// reports false when no such transaction exists.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, amount core.Money, category string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		AmountCents: amount.Cents,
		Category:    category,
		ID:          id,
	})
	if err != nil {
		return false, fmt.Errorf("update transaction %d: %w", id, translate(err))
	}
	return s.changed(n), nil
}

// UpdateAccountTransaction is UpdateTransaction restricted to transactions
// owned by accountID.
func (s *Store) UpdateAccountTransaction(ctx context.Context, accountID, id int64, amount core.Money, category string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.queries.UpdateUserTransaction(ctx, UpdateUserTransactionParams{
		AmountCents: amount.Cents,
		Category:    category,
		ID:          id,
		UserID:      accountID,
	})
	if err != nil {
		return false, fmt.Errorf("update transaction %d: %w", id, translate(err))
	}
	return s.changed(n), nil
}

// DeleteTransaction removes transaction id. It reports false when no such
// transaction exists.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return s.changed(n), nil
}

// DeleteAccountTransaction is DeleteTransaction restricted to transactions
// owned by accountID.
func (s *Store) DeleteAccountTransaction(ctx context.Context, accountID, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.queries.DeleteUserTransaction(ctx, DeleteUserTransactionParams{ID: id, UserID: accountID})
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return s.changed(n), nil
}

// SumByKind groups the transactions matching f by kind and sums their
// amounts. No match yields an empty, non-nil report.
func (s *Store) SumByKind(ctx context.Context, f TransactionFilter) (core.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queries.SumTransactionsByType(ctx, f.params())
	if err != nil {
		return nil, fmt.Errorf("sum transactions by type: %w", err)
	}
	report := make(core.Report, len(rows))
	for _, r := range rows {
		report[core.Kind(r.Type)] = core.Money{Cents: r.TotalCents}
	}
	return report, nil
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, err := s.queries.CreateBudget(ctx, CreateBudgetParams{
		UserID:     b.AccountID,
		Category:   b.Category,
		LimitCents: b.Limit.Cents,
	})
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", translate(err))
	}
	s.bump()

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", row.ID,
		"account_id", row.UserID,
		"category", row.Category,
		"limit_cents", row.LimitCents)

	return row.ID, nil
}

func (s *Store) ListBudgets(ctx context.Context, accountID int64) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queries.ListBudgets(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	budgets := make([]core.Budget, len(rows))
	for i, r := range rows {
		budgets[i] = budgetFromRow(r)
	}
	return budgets, nil
}

// BudgetSpend returns every budget of accountID in id order with the summed
// amount of all the account's transactions in the budget's category.
func (s *Store) BudgetSpend(ctx context.Context, accountID int64) ([]BudgetSpend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queries.ListBudgetSpend(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list budget spend: %w", err)
	}
	out := make([]BudgetSpend, len(rows))
	for i, r := range rows {
		out[i] = BudgetSpend{
			Budget: core.Budget{
				ID:        r.ID,
				AccountID: r.UserID,
				Category:  r.Category,
				Limit:     core.Money{Cents: r.LimitCents},
			},
			Spent: core.Money{Cents: r.SpentCents},
		}
	}
	return out, nil
}

func (s *Store) changed(rowsAffected int64) bool {
	if rowsAffected > 0 {
		s.bump()
		return true
	}
	return false
}

// translate maps driver errors onto the core error taxonomy.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return core.ErrUsernameTaken
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return core.ErrAccountNotFound
	}
	// Primary code only: fall back to the message text.
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return core.ErrUsernameTaken
		case strings.Contains(msg, "FOREIGN KEY"):
			return core.ErrAccountNotFound
		}
	}
	return err
}

func accountFromRow(u User) core.Account {
	return core.Account{ID: u.ID, Username: u.Username, PasswordHash: u.Password}
}

func transactionFromRow(r Transaction) core.Transaction {
	return core.Transaction{
		ID:        r.ID,
		AccountID: r.UserID,
		Kind:      core.Kind(r.Type),
		Amount:    core.Money{Cents: r.AmountCents},
		Category:  r.Category,
		Date:      r.Date,
	}
}

func budgetFromRow(r Budget) core.Budget {
	return core.Budget{
		ID:        r.ID,
		AccountID: r.UserID,
		Category:  r.Category,
		Limit:     core.Money{Cents: r.LimitCents},
	}
}
