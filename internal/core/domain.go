package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date form transactions are stored in.
const DateLayout = "2006-01-02"

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
)

type (
	Kind string

	Account struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	Transaction struct {
		ID        int64
		AccountID int64
		Kind      Kind
		Amount    Money
		Category  string
		Date      string // YYYY-MM-DD
	}

	Budget struct {
		ID        int64
		AccountID int64
		Category  string
		Limit     Money
	}
)

var (
	ErrInvalidKind     = &ValidationError{Field: "type", Reason: "must be Income or Expense"}
	ErrInvalidAmount   = &ValidationError{Field: "amount", Reason: "must be a non-negative number"}
	ErrInvalidDate     = &ValidationError{Field: "date", Reason: "must be a calendar date in YYYY-MM-DD form"}
	ErrEmptyCategory   = &ValidationError{Field: "category", Reason: "cannot be empty"}
	ErrInvalidAccount  = &ValidationError{Field: "account_id", Reason: "must be a positive id"}
	ErrEmptyUsername   = &ValidationError{Field: "username", Reason: "cannot be empty"}
	ErrEmptyPassword   = &ValidationError{Field: "password", Reason: "cannot be empty"}
	ErrInvalidMonth    = &ValidationError{Field: "month", Reason: "must be two digits between 01 and 12"}
	ErrInvalidYear     = &ValidationError{Field: "year", Reason: "must be four digits"}
	errCategoryTooLong = &ValidationError{Field: "category", Reason: "too long (max 100 characters)"}
)

// ParseKind accepts the two transaction kinds in any letter case and returns
// the canonical spelling.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return KindIncome, nil
	case "expense":
		return KindExpense, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) Validate() error {
	if k != KindIncome && k != KindExpense {
		return ErrInvalidKind
	}
	return nil
}

// ValidateDate checks s is an existing calendar date in DateLayout.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateCategory checks a free-form category label.
func ValidateCategory(c string) error {
	if strings.TrimSpace(c) == "" {
		return ErrEmptyCategory
	}
	if len(c) > 100 {
		return errCategoryTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := ValidateCategory(t.Category); err != nil {
		return err
	}
	return ValidateDate(t.Date)
}

func (b Budget) Validate() error {
	if b.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if err := ValidateCategory(b.Category); err != nil {
		return err
	}
	return b.Limit.Validate()
}

// BudgetStatus is the outcome of comparing one budget row against the
// transactions recorded in its category.
type BudgetStatus struct {
	BudgetID int64
	Category string
	Limit    Money
	Spent    Money
	Exceeded bool
}

// NewBudgetStatus evaluates spent against limit. Spending exactly the limit
// is within budget.
func NewBudgetStatus(b Budget, spent Money) BudgetStatus {
	return BudgetStatus{
		BudgetID: b.ID,
		Category: b.Category,
		Limit:    b.Limit,
		Spent:    spent,
		Exceeded: spent.Cents > b.Limit.Cents,
	}
}

// Message renders the status as a single user-facing line.
func (s BudgetStatus) Message() string {
	if s.Exceeded {
		return fmt.Sprintf("Alert: You have exceeded your budget for %s!", s.Category)
	}
	return fmt.Sprintf("You are within the budget for %s.", s.Category)
}
