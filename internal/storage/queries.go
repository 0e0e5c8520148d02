package storage

import (
	"context"
)

const createUser = `INSERT INTO users (username, password) VALUES (?, ?)
RETURNING id, username, password`

type CreateUserParams struct {
	Username string
	Password string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.Password)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password)
	return i, err
}

const getUser = `SELECT id, username, password FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password)
	return i, err
}

const getUserByUsername = `SELECT id, username, password FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password)
	return i, err
}

const listUsers = `SELECT id, username, password FROM users ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(&i.ID, &i.Username, &i.Password); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `INSERT INTO transactions (user_id, type, amount_cents, category, date)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, type, amount_cents, category, date`

type CreateTransactionParams struct {
	UserID      int64
	Type        string
	AmountCents int64
	Category    string
	Date        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Type,
		arg.AmountCents,
		arg.Category,
		arg.Date,
	)
	var i Transaction
	err := row.Scan(&i.ID, &i.UserID, &i.Type, &i.AmountCents, &i.Category, &i.Date)
	return i, err
}

const getTransaction = `SELECT id, user_id, type, amount_cents, category, date FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(&i.ID, &i.UserID, &i.Type, &i.AmountCents, &i.Category, &i.Date)
	return i, err
}

// Empty filter values match everything. A stored date strftime cannot parse
// yields NULL and never equals a month or year.
const listTransactions = `SELECT id, user_id, type, amount_cents, category, date FROM transactions
WHERE user_id = ?
  AND (? = '' OR type = ?)
  AND (? = '' OR category = ?)
  AND (? = '' OR strftime('%m', date) = ?)
  AND (? = '' OR strftime('%Y', date) = ?)
ORDER BY date, id`

type ListTransactionsParams struct {
	UserID   int64
	Type     string
	Category string
	Month    string
	Year     string
}

func (arg ListTransactionsParams) args() []interface{} {
	return []interface{}{
		arg.UserID,
		arg.Type, arg.Type,
		arg.Category, arg.Category,
		arg.Month, arg.Month,
		arg.Year, arg.Year,
	}
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.UserID, &i.Type, &i.AmountCents, &i.Category, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumTransactionsByType = `SELECT type, SUM(amount_cents) FROM transactions
WHERE user_id = ?
  AND (? = '' OR type = ?)
  AND (? = '' OR category = ?)
  AND (? = '' OR strftime('%m', date) = ?)
  AND (? = '' OR strftime('%Y', date) = ?)
GROUP BY type`

type SumTransactionsByTypeRow struct {
	Type       string
	TotalCents int64
}

func (q *Queries) SumTransactionsByType(ctx context.Context, arg ListTransactionsParams) ([]SumTransactionsByTypeRow, error) {
	rows, err := q.db.QueryContext(ctx, sumTransactionsByType, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumTransactionsByTypeRow
	for rows.Next() {
		var i SumTransactionsByTypeRow
		if err := rows.Scan(&i.Type, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `UPDATE transactions SET amount_cents = ?, category = ? WHERE id = ?`

type UpdateTransactionParams struct {
	AmountCents int64
	Category    string
	ID          int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction, arg.AmountCents, arg.Category, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateUserTransaction = `UPDATE transactions SET amount_cents = ?, category = ? WHERE id = ? AND user_id = ?`

type UpdateUserTransactionParams struct {
	AmountCents int64
	Category    string
	ID          int64
	UserID      int64
}

func (q *Queries) UpdateUserTransaction(ctx context.Context, arg UpdateUserTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserTransaction, arg.AmountCents, arg.Category, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteUserTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

type DeleteUserTransactionParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) DeleteUserTransaction(ctx context.Context, arg DeleteUserTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUserTransaction, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createBudget = `INSERT INTO budgets (user_id, category, limit_cents) VALUES (?, ?, ?)
RETURNING id, user_id, category, limit_cents`

type CreateBudgetParams struct {
	UserID     int64
	Category   string
	LimitCents int64
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, createBudget, arg.UserID, arg.Category, arg.LimitCents)
	var i Budget
	err := row.Scan(&i.ID, &i.UserID, &i.Category, &i.LimitCents)
	return i, err
}

const listBudgets = `SELECT id, user_id, category, limit_cents FROM budgets WHERE user_id = ? ORDER BY id`

func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(&i.ID, &i.UserID, &i.Category, &i.LimitCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Spend counts every transaction in the budget's category, whatever its type.
const listBudgetSpend = `SELECT b.id, b.user_id, b.category, b.limit_cents,
  COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
            WHERE t.user_id = b.user_id AND t.category = b.category), 0) AS spent_cents
FROM budgets b
WHERE b.user_id = ?
ORDER BY b.id`

type ListBudgetSpendRow struct {
	ID         int64
	UserID     int64
	Category   string
	LimitCents int64
	SpentCents int64
}

func (q *Queries) ListBudgetSpend(ctx context.Context, userID int64) ([]ListBudgetSpendRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetSpend, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListBudgetSpendRow
	for rows.Next() {
		var i ListBudgetSpendRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.Category, &i.LimitCents, &i.SpentCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
