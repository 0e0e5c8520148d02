package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

var (
	flagTxType     string
	flagTxAmount   string
	flagTxCategory string
	flagTxDate     string
	flagTxMonth    string
	flagTxYear     string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Add, change, remove and list transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an income or expense",
	Args:  cobra.NoArgs,
	RunE:  runTxAdd,
}

var txUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the amount and category of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxUpdate,
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxDelete,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, optionally for one month or year",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

func init() {
	txAddCmd.Flags().StringVarP(&flagTxType, "type", "t", "", "Income or Expense")
	txAddCmd.Flags().StringVarP(&flagTxAmount, "amount", "a", "", "amount, e.g. 12.50")
	txAddCmd.Flags().StringVarP(&flagTxCategory, "category", "c", "", "category, e.g. Food")
	txAddCmd.Flags().StringVarP(&flagTxDate, "date", "d", "", "date as YYYY-MM-DD (default today)")
	_ = txAddCmd.MarkFlagRequired("type")
	_ = txAddCmd.MarkFlagRequired("amount")
	_ = txAddCmd.MarkFlagRequired("category")

	txUpdateCmd.Flags().StringVarP(&flagTxAmount, "amount", "a", "", "new amount")
	txUpdateCmd.Flags().StringVarP(&flagTxCategory, "category", "c", "", "new category")
	_ = txUpdateCmd.MarkFlagRequired("amount")
	_ = txUpdateCmd.MarkFlagRequired("category")

	txListCmd.Flags().StringVar(&flagTxMonth, "month", "", "month as MM")
	txListCmd.Flags().StringVar(&flagTxYear, "year", "", "year as YYYY")

	txCmd.AddCommand(txAddCmd, txUpdateCmd, txDeleteCmd, txListCmd)
	rootCmd.AddCommand(txCmd)
}

func runTxAdd(_ *cobra.Command, _ []string) error {
	date := flagTxDate
	if date == "" {
		date = time.Now().Format(core.DateLayout)
	}
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		id, err := a.ledger.AddTransaction(ctx, accountID, flagTxType, flagTxAmount, flagTxCategory, date)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction added successfully! (id %d)\n", id)
		return nil
	})
}

func runTxUpdate(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		var ok bool
		if cfg.EnforceOwnership {
			ok, err = a.ledger.UpdateOwnTransaction(ctx, accountID, id, flagTxAmount, flagTxCategory)
		} else {
			ok, err = a.ledger.UpdateTransaction(ctx, id, flagTxAmount, flagTxCategory)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("failed to update transaction: no transaction %d", id)
		}
		fmt.Println("Transaction updated successfully!")
		return nil
	})
}

func runTxDelete(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		var ok bool
		if cfg.EnforceOwnership {
			ok, err = a.ledger.DeleteOwnTransaction(ctx, accountID, id)
		} else {
			ok, err = a.ledger.DeleteTransaction(ctx, id)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("failed to delete transaction: no transaction %d", id)
		}
		fmt.Println("Transaction deleted successfully!")
		return nil
	})
}

func runTxList(_ *cobra.Command, _ []string) error {
	return withAccount(func(ctx context.Context, a *app, accountID int64) error {
		txs, err := a.ledger.ListTransactions(ctx, accountID, flagTxMonth, flagTxYear)
		if err != nil {
			return err
		}
		if len(txs) == 0 {
			fmt.Println("\n  No transactions found.")
			return nil
		}

		rows := make([][]string, 0, len(txs))
		for _, t := range txs {
			rows = append(rows, []string{
				strconv.FormatInt(t.ID, 10),
				t.Date,
				string(t.Kind),
				cli.SingleLine(t.Category),
				cli.FormatMoney(t.Amount),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Transactions",
			Headers: []string{"ID", "Date", "Type", "Category", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}
