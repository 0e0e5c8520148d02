package services

import (
	"context"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// reportKey includes the store generation, so a write makes every older
// entry unreachable.
type reportKey struct {
	accountID  int64
	month      string
	year       string
	generation int64
}

// ReportService sums transactions per kind over a month or a year.
type ReportService struct {
	store   ReportStore
	budgets *BudgetService
	cache   cache.Cache[reportKey, core.Report]
	logger  *log.Logger
}

// NewReportService creates a report engine. A cacheSize of 0 disables
// result caching. budgets is only needed by Overview.
func NewReportService(store ReportStore, budgets *BudgetService, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	s := &ReportService{
		store:   store,
		budgets: budgets,
		logger:  logger.WithComponent(log.ComponentReport),
	}
	if cacheSize > 0 {
		s.cache = cache.NewLRU[reportKey, core.Report](cacheSize, cacheTTL)
	}
	return s
}

// MonthlyReport totals accountID's transactions dated in month ("01".."12")
// of year (four digits).
func (s *ReportService) MonthlyReport(ctx context.Context, accountID int64, month, year string) (core.Report, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	if err := core.ValidateYear(year); err != nil {
		return nil, err
	}
	return s.report(ctx, accountID, month, year)
}

// YearlyReport totals accountID's transactions dated in year.
func (s *ReportService) YearlyReport(ctx context.Context, accountID int64, year string) (core.Report, error) {
	if err := core.ValidateYear(year); err != nil {
		return nil, err
	}
	return s.report(ctx, accountID, "", year)
}

// Overview computes the monthly report, the yearly report and the budget
// check for one account concurrently.
func (s *ReportService) Overview(ctx context.Context, accountID int64, month, year string) (core.Overview, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Overview{}, err
	}
	if err := core.ValidateYear(year); err != nil {
		return core.Overview{}, err
	}

	ov := core.Overview{Month: month, Year: year}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.report(gctx, accountID, month, year)
		ov.Monthly = r
		return err
	})
	g.Go(func() error {
		r, err := s.report(gctx, accountID, "", year)
		ov.Yearly = r
		return err
	})
	if s.budgets != nil {
		g.Go(func() error {
			st, err := s.budgets.CheckBudget(gctx, accountID)
			ov.Budgets = st
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return core.Overview{}, fmt.Errorf("overview: %w", err)
	}
	return ov, nil
}

func (s *ReportService) report(ctx context.Context, accountID int64, month, year string) (core.Report, error) {
	key := reportKey{accountID: accountID, month: month, year: year, generation: s.store.Generation()}
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "Report cache hit", log.FieldAccountID, accountID, log.FieldMonth, month, log.FieldYear, year)
			return maps.Clone(r), nil
		}
	}

	start := time.Now()
	r, err := s.store.SumByKind(ctx, storage.TransactionFilter{AccountID: accountID, Month: month, Year: year})
	if err != nil {
		s.logger.LogError(ctx, "Report query failed", err, log.OpReport,
			log.NewFields().WithErrorType(log.ErrorTypeDatabase).WithAccount(accountID).WithPeriod(month, year))
		return nil, fmt.Errorf("report: %w", err)
	}
	fields := log.NewFields().WithOperation(log.OpReport).WithAccount(accountID).WithPeriod(month, year)
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	s.logger.DebugContext(ctx, "Report computed", fields.ToSlice()...)

	if s.cache != nil {
		s.cache.Set(key, maps.Clone(r))
	}
	return r, nil
}
