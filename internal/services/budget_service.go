package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetService stores per-category spending limits and evaluates them
// against recorded transactions.
type BudgetService struct {
	store  BudgetStore
	logger *log.Logger
}

func NewBudgetService(store BudgetStore, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.Default(log.ComponentBudget)
	}
	return &BudgetService{store: store, logger: logger.WithComponent(log.ComponentBudget)}
}

// SetBudget adds a limit for category. Setting a second budget for the same
// category adds another row rather than replacing the first.
func (s *BudgetService) SetBudget(ctx context.Context, accountID int64, category, limit string) (int64, error) {
	m, err := core.ParseAmount(limit)
	if err != nil {
		return 0, err
	}
	b := core.Budget{AccountID: accountID, Category: category, Limit: m}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("set budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget set",
		log.FieldOperation, log.OpCreate,
		log.FieldBudgetID, id,
		log.FieldAccountID, accountID,
		log.FieldCategory, category,
		log.FieldLimitCents, m.Cents)
	return id, nil
}

// CheckBudget returns one status per budget row of accountID, in creation
// order. Spending counts every transaction in the budget's category,
// whatever its kind.
func (s *BudgetService) CheckBudget(ctx context.Context, accountID int64) ([]core.BudgetStatus, error) {
	rows, err := s.store.BudgetSpend(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("check budget: %w", err)
	}

	statuses := make([]core.BudgetStatus, 0, len(rows))
	for _, r := range rows {
		st := core.NewBudgetStatus(r.Budget, r.Spent)
		s.logger.DebugContext(ctx, "Budget evaluated",
			log.NewFields().WithOperation(log.OpCheck).
				WithBudget(st.BudgetID, st.Category, st.Limit.Cents, st.Spent.Cents, st.Exceeded).ToSlice()...)
		statuses = append(statuses, st)
	}
	return statuses, nil
}
