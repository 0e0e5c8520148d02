package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/worker"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow ledger changes published over AMQP",
	Long: `Consumes the ledger event queue and prints one line per change until
interrupted. Requires an AMQP URL in the config or FINTRACK_AMQP_URL.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(_ *cobra.Command, _ []string) error {
	if cfg.AMQP.URL == "" {
		return errors.New("AMQP is not configured: set amqp.url or FINTRACK_AMQP_URL")
	}
	return withApp(func(ctx context.Context, a *app) error {
		if a.publisher == nil {
			return fmt.Errorf("cannot reach AMQP broker at %s", cfg.AMQP.URL)
		}
		w := worker.NewFeedWorker(a.store, os.Stdout, logger)
		fmt.Println(cli.RenderNote("Watching %s for ledger changes. Press Ctrl+C to stop.", cfg.AMQP.Queue))

		err := a.publisher.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}
