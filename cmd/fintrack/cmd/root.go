// Package cmd provides the fintrack CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// UserEnv names the account to act as when --user is not given.
const UserEnv = "FINTRACK_USER"

var (
	flagConfig string
	flagDB     string
	flagUser   string
	flagDebug  bool

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker",
	Long: `fintrack records income and expenses per account, reports monthly and
yearly totals, checks spending against per-category budgets, and backs the
whole ledger up to a portable SQL script.

Example:
  fintrack register alice
  fintrack --user alice tx add --type expense --amount 12.50 --category Food
  fintrack --user alice report monthly --month 03 --year 2024
  fintrack backup`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()

		c, err := cli.LoadAndValidateConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagDB != "" {
			c.DBPath = flagDB
		}
		cfg = c
		logger = cli.SetupLogger(cfg.LogLevel, flagDebug)
		return nil
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default $XDG_CONFIG_HOME/fintrack/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database file (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "account to act as (default $"+UserEnv+")")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// app wires the store and services for one command invocation.
type app struct {
	store     *storage.Store
	publisher *amqp.Client
	auth      *services.AuthService
	ledger    *services.LedgerService
	budgets   *services.BudgetService
	reports   *services.ReportService
}

func openApp(ctx context.Context) (*app, error) {
	store, err := cli.OpenStore(ctx, logger, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &app{store: store}
	a.publisher = cli.ConnectAMQP(ctx, logger, cfg.AMQP)

	var publisher services.EventPublisher
	if a.publisher != nil {
		publisher = a.publisher
	}
	a.auth = services.NewAuthService(store, cfg.BcryptCost, logger)
	a.ledger = services.NewLedgerService(store, publisher, logger)
	a.budgets = services.NewBudgetService(store, logger)
	a.reports = services.NewReportService(store, a.budgets, cfg.ReportCacheSize, cfg.ReportCacheTTL, logger)
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", log.FieldError, err)
	}
}

// login authenticates the --user account and returns its id.
func (a *app) login(ctx context.Context) (int64, error) {
	username := flagUser
	if username == "" {
		username = os.Getenv(UserEnv)
	}
	if username == "" {
		return 0, fmt.Errorf("no account given: use --user or set %s", UserEnv)
	}

	password, err := cli.ReadPassword(fmt.Sprintf("Password for %s", username))
	if err != nil {
		return 0, err
	}

	id, err := a.auth.Authenticate(ctx, username, password)
	if errors.Is(err, core.ErrInvalidCredentials) {
		return 0, errors.New("invalid username or password")
	}
	return id, err
}

// withAccount opens the app, logs in and runs fn with the account id.
func withAccount(fn func(ctx context.Context, a *app, accountID int64) error) error {
	ctx, cancel := cli.SignalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	accountID, err := a.login(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, a, accountID)
}

// withApp opens the app without logging in.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := cli.SignalContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
