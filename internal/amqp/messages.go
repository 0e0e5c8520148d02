package amqp

import (
	"encoding/json"
	"time"
)

// Ledger actions carried by LedgerEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEvent announces that a transaction changed. It carries ids only;
// consumers read current state from their own copy of the ledger.
type LedgerEvent struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(id, accountID int64, action string) *LedgerEvent {
	return &LedgerEvent{
		ID:        id,
		AccountID: accountID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
