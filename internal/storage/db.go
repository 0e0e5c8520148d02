package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

type User struct {
	ID       int64
	Username string
	Password string
}

type Transaction struct {
	ID          int64
	UserID      int64
	Type        string
	AmountCents int64
	Category    string
	Date        string
}

type Budget struct {
	ID         int64
	UserID     int64
	Category   string
	LimitCents int64
}
