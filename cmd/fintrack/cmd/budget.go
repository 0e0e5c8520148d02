package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

var (
	flagBudgetCategory string
	flagBudgetLimit    string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Set and check spending limits per category",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Add a spending limit for a category",
	Args:  cobra.NoArgs,
	RunE:  runBudgetSet,
}

var budgetCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare spending with every budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetCheck,
}

func init() {
	budgetSetCmd.Flags().StringVarP(&flagBudgetCategory, "category", "c", "", "category, e.g. Food")
	budgetSetCmd.Flags().StringVarP(&flagBudgetLimit, "limit", "l", "", "limit amount, e.g. 300")
	_ = budgetSetCmd.MarkFlagRequired("category")
	_ = budgetSetCmd.MarkFlagRequired("limit")

	budgetCmd.AddCommand(budgetSetCmd, budgetCheckCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetSet(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		if _, err := a.budgets.SetBudget(ctx, accountID, flagBudgetCategory, flagBudgetLimit); err != nil {
			return err
		}
		fmt.Println("Budget set successfully!")
		return nil
	})
}

func runBudgetCheck(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		statuses, err := a.budgets.CheckBudget(ctx, accountID)
		if err != nil {
			return err
		}
		fmt.Println()
		printBudgets(statuses)
		return nil
	})
}

func printBudgets(statuses []core.BudgetStatus) {
	if len(statuses) == 0 {
		fmt.Println(cli.RenderNote("No budgets set."))
		return
	}
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			cli.SingleLine(st.Category),
			cli.FormatMoney(st.Limit),
			cli.FormatMoney(st.Spent),
			cli.FormatPercent(st.Spent, st.Limit),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Budgets",
		Headers: []string{"Category", "Limit", "Spent", "Used"},
		Rows:    rows,
	}))
	for _, st := range statuses {
		fmt.Println(cli.RenderStatus(st.Exceeded, st.Message()))
	}
}
