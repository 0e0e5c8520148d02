package core

import (
	"regexp"
	"sort"
)

// Report maps a transaction kind to the summed amount of matching
// transactions. Kinds with no matching transactions are absent.
type Report map[Kind]Money

// Kinds returns the report's keys in a stable order.
func (r Report) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Net is income minus expense.
func (r Report) Net() Money {
	return Money{Cents: r[KindIncome].Cents - r[KindExpense].Cents}
}

// Overview is a compact dashboard for one account and period.
type Overview struct {
	Month   string
	Year    string
	Monthly Report
	Yearly  Report
	Budgets []BudgetStatus
}

var (
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

// ValidateMonth checks a two-digit month, "01" through "12".
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return ErrInvalidMonth
	}
	return nil
}

// ValidateYear checks a four-digit year.
func ValidateYear(year string) error {
	if !yearPattern.MatchString(year) {
		return ErrInvalidYear
	}
	return nil
}
