// Package snapshot writes the ledger to a portable SQL script and replays
// such scripts back into a store.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Mode selects how Restore treats rows already in the store.
type Mode string

const (
	// ModeMerge keeps existing rows; dumped rows overwrite rows with the
	// same id.
	ModeMerge Mode = "merge"
	// ModeReplace empties the ledger tables before replaying the dump.
	ModeReplace Mode = "replace"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMerge, ModeReplace:
		return Mode(s), nil
	case "":
		return ModeMerge, nil
	}
	return "", &core.ValidationError{Field: "restore mode", Reason: fmt.Sprintf("%q is not one of merge, replace", s)}
}

// Store runs a function inside one exclusive SQL transaction.
// *storage.Store satisfies it.
type Store interface {
	View(ctx context.Context, fn func(tx *sql.Tx) error) error
	Update(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type Manager struct {
	store  Store
	mode   Mode
	logger *log.Logger
}

func NewManager(store Store, mode Mode, logger *log.Logger) *Manager {
	if mode == "" {
		mode = ModeMerge
	}
	if logger == nil {
		logger = log.Default(log.ComponentSnapshot)
	}
	return &Manager{store: store, mode: mode, logger: logger.WithComponent(log.ComponentSnapshot)}
}

func (m *Manager) Mode() Mode {
	return m.mode
}

// table describes one dumped table. Columns are listed in schema order so
// VALUES(...) needs no column list. valid is a predicate every restored row
// must satisfy; SQLite column types alone do not stop '12.5x' landing in an
// INTEGER column.
type table struct {
	name    string
	create  string
	columns string
	valid   string
}

// Parents come before children so a replayed dump satisfies foreign keys
// statement by statement.
var tables = []table{
	{
		name:    "users",
		create:  `CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT NOT NULL UNIQUE, password TEXT NOT NULL);`,
		columns: "id, username, password",
		valid:   "typeof(id) = 'integer' AND typeof(username) = 'text' AND typeof(password) = 'text'",
	},
	{
		name:    "transactions",
		create:  `CREATE TABLE IF NOT EXISTS transactions (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL REFERENCES users (id), type TEXT NOT NULL, amount_cents INTEGER NOT NULL CHECK (amount_cents >= 0), category TEXT NOT NULL, date TEXT NOT NULL);`,
		columns: "id, user_id, type, amount_cents, category, date",
		valid: "typeof(id) = 'integer' AND typeof(user_id) = 'integer' AND type IN ('Income', 'Expense') " +
			"AND typeof(amount_cents) = 'integer' AND typeof(category) = 'text' " +
			"AND typeof(date) = 'text' AND date(date) IS date",
	},
	{
		name:    "budgets",
		create:  `CREATE TABLE IF NOT EXISTS budgets (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL REFERENCES users (id), category TEXT NOT NULL, limit_cents INTEGER NOT NULL CHECK (limit_cents >= 0));`,
		columns: "id, user_id, category, limit_cents",
		valid:   "typeof(id) = 'integer' AND typeof(user_id) = 'integer' AND typeof(category) = 'text' AND typeof(limit_cents) = 'integer'",
	},
}

func lookupTable(name string) (table, bool) {
	for _, t := range tables {
		if t.name == name {
			return t, true
		}
	}
	return table{}, false
}
