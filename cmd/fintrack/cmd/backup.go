package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/snapshot"
)

var (
	flagBackupOut   string
	flagRestoreMode string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the whole ledger to a SQL script",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Load a backup script into the ledger",
	Long: `Replays a script written by "fintrack backup". The script runs in a single
transaction: if any part of it fails the ledger is left untouched.

Modes:
  merge    keep existing rows; rows in the backup overwrite rows with the same id
  replace  discard all accounts, transactions and budgets first`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	backupCmd.Flags().StringVarP(&flagBackupOut, "out", "o", "", "output file (default: a new file in the backup directory)")
	restoreCmd.Flags().StringVar(&flagRestoreMode, "mode", "", "merge or replace (default from config)")

	rootCmd.AddCommand(backupCmd, restoreCmd)
}

func runBackup(_ *cobra.Command, _ []string) error {
	path := flagBackupOut
	if path == "" {
		path = snapshot.NewArtifactPath(cfg.BackupDir)
	}
	return withApp(func(ctx context.Context, a *app) error {
		m := snapshot.NewManager(a.store, snapshot.ModeMerge, logger)
		if err := m.BackupFile(ctx, path); err != nil {
			return err
		}
		fmt.Printf("Backup completed successfully! (%s)\n", path)
		return nil
	})
}

func runRestore(_ *cobra.Command, args []string) error {
	modeName := flagRestoreMode
	if modeName == "" {
		modeName = cfg.RestoreMode
	}
	mode, err := snapshot.ParseMode(modeName)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		m := snapshot.NewManager(a.store, mode, logger)
		if err := m.RestoreFile(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Data restored successfully! (%s mode)\n", m.Mode())
		return nil
	})
}
