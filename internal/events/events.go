// Package events defines the notifications emitted after a ledger write commits.
package events

import (
    "context"
    "time"

    "github.com/tinoosan/groupledger/internal/ledger"
)

// EntryRecorded is published once per committed entry.
type EntryRecorded struct {
    ID            string    `json:"id"`
    Kind          string    `json:"kind"`
    AmountMinor   int64     `json:"amount_minor"`
    Amount        string    `json:"amount"`
    Currency      string    `json:"currency"`
    Description   string    `json:"description"`
    ActorID       string    `json:"actor_id"`
    ActorName     string    `json:"actor_name"`
    AttachmentRef *string   `json:"attachment_ref,omitempty"`
    CreatedAt     time.Time `json:"created_at"`
}

// FromEntry builds the event for a committed entry.
func FromEntry(e ledger.Entry) EntryRecorded {
    return EntryRecorded{
        ID:            e.ID,
        Kind:          e.Kind.String(),
        AmountMinor:   ledger.MinorUnits(e.Amount),
        Amount:        e.Amount.Decimal().String(),
        Currency:      e.Amount.Curr().Code(),
        Description:   e.Description,
        ActorID:       e.ActorID,
        ActorName:     e.ActorName,
        AttachmentRef: e.AttachmentRef,
        CreatedAt:     e.CreatedAt.UTC(),
    }
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
    Publish(ctx context.Context, ev EntryRecorded) error
    Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, EntryRecorded) error { return nil }
func (Noop) Close() error                                 { return nil }
