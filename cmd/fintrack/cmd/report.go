package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

var (
	flagReportMonth string
	flagReportYear  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Income and expense totals",
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Totals for one month",
	Args:  cobra.NoArgs,
	RunE:  runReportMonthly,
}

var reportYearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Totals for one year",
	Args:  cobra.NoArgs,
	RunE:  runReportYearly,
}

var reportOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Month, year and budget status at a glance",
	Args:  cobra.NoArgs,
	RunE:  runReportOverview,
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{reportMonthlyCmd, reportOverviewCmd} {
		c.Flags().StringVar(&flagReportMonth, "month", now.Format("01"), "month as MM")
	}
	for _, c := range []*cobra.Command{reportMonthlyCmd, reportYearlyCmd, reportOverviewCmd} {
		c.Flags().StringVar(&flagReportYear, "year", now.Format("2006"), "year as YYYY")
	}

	reportCmd.AddCommand(reportMonthlyCmd, reportYearlyCmd, reportOverviewCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportMonthly(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		r, err := a.reports.MonthlyReport(ctx, accountID, flagReportMonth, flagReportYear)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY REPORT  %s-%s", flagReportYear, flagReportMonth)))
		fmt.Println()
		printReport("Totals", r)
		return nil
	})
}

func runReportYearly(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		r, err := a.reports.YearlyReport(ctx, accountID, flagReportYear)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("YEARLY REPORT  %s", flagReportYear)))
		fmt.Println()
		printReport("Totals", r)
		return nil
	})
}

func runReportOverview(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		ov, err := a.reports.Overview(ctx, accountID, flagReportMonth, flagReportYear)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("OVERVIEW  %s-%s", ov.Year, ov.Month)))
		fmt.Println()
		printReport("This Month", ov.Monthly)
		fmt.Println()
		printReport("This Year", ov.Yearly)
		fmt.Println()
		printBudgets(ov.Budgets)
		return nil
	})
}

func printReport(title string, r core.Report) {
	if len(r) == 0 {
		fmt.Println(cli.RenderNote("%s: no transactions.", title))
		return
	}
	rows := make([][]string, 0, len(r)+2)
	for _, k := range r.Kinds() {
		rows = append(rows, []string{string(k), cli.FormatMoney(r[k])})
	}
	rows = append(rows, []string{"---"}, []string{"Net", cli.FormatMoney(r.Net())})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Type", "Total"},
		Rows:    rows,
	}))
}
