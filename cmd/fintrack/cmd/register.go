package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(_ *cobra.Command, args []string) error {
	username := args[0]
	password, err := cli.ReadPassword(fmt.Sprintf("Choose a password for %s", username))
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		id, err := a.auth.Register(ctx, username, password)
		if errors.Is(err, core.ErrUsernameTaken) {
			return fmt.Errorf("username %q already exists", username)
		}
		if err != nil {
			return err
		}
		fmt.Printf("User registered successfully! (account %d)\n", id)
		return nil
	})
}
