// Package worker processes ledger events received over AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// TransactionReader looks up the current state of a transaction.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// FeedWorker prints ledger events as they arrive, one line each,
// resolved against the current ledger. Nothing is recorded.
type FeedWorker struct {
	store  TransactionReader
	logger *log.Logger

	mu  sync.Mutex
	out io.Writer
}

func NewFeedWorker(store TransactionReader, out io.Writer, logger *log.Logger) *FeedWorker {
	if logger == nil {
		logger = log.Default(log.ComponentAMQP)
	}
	return &FeedWorker{store: store, out: out, logger: logger.WithComponent(log.ComponentAMQP)}
}

// HandleLedgerEvent writes one line for ev. An error means the event should
// be retried.
func (w *FeedWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldTxID, ev.ID,
		log.FieldAccountID, ev.AccountID,
		"action", ev.Action)

	var line string
	switch ev.Action {
	case amqp.ActionDeleted:
		line = fmt.Sprintf("transaction %d deleted", ev.ID)
	case amqp.ActionCreated, amqp.ActionUpdated:
		t, err := w.store.GetTransaction(ctx, ev.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			line = fmt.Sprintf("transaction %d %s (since removed)", ev.ID, ev.Action)
		case err != nil:
			return fmt.Errorf("get transaction %d: %w", ev.ID, err)
		default:
			line = fmt.Sprintf("transaction %d %s: %s %s %s on %s (account %d)",
				t.ID, ev.Action, t.Kind, t.Amount, t.Category, t.Date, t.AccountID)
		}
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown ledger action", "action", ev.Action, log.FieldTxID, ev.ID)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintf(w.out, "%s  %s\n", ev.Timestamp.Local().Format(time.DateTime), line); err != nil {
		return fmt.Errorf("write feed line: %w", err)
	}
	return nil
}
