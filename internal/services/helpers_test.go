package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.NewStore(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func mustAccountID(t *testing.T, s *storage.Store, username string) int64 {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("CreateAccount(%q): %v", username, err)
	}
	return a.ID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

var errBrokerDown = errors.New("broker down")
