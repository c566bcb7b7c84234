package httpapi

import (
    "time"

    "github.com/tinoosan/groupledger/internal/ledger"
)

type balanceResponse struct {
    Income   string `json:"income"`
    Expenses string `json:"expenses"`
    Net      string `json:"net"`
    Currency string `json:"currency"`
    Status   string `json:"status"`
}

type entryResponse struct {
    ID            string    `json:"id"`
    Kind          string    `json:"kind"`
    Amount        string    `json:"amount"`
    AmountMinor   int64     `json:"amount_minor"`
    Currency      string    `json:"currency"`
    Description   string    `json:"description"`
    ActorID       string    `json:"actor_id"`
    ActorName     string    `json:"actor_name"`
    AttachmentRef *string   `json:"attachment_ref,omitempty"`
    CreatedAt     time.Time `json:"created_at"`
}

type participantResponse struct {
    ID          string    `json:"id"`
    Handle      *string   `json:"handle,omitempty"`
    DisplayName string    `json:"display_name"`
    FirstSeenAt time.Time `json:"first_seen_at"`
}

func toBalanceResponse(b ledger.Balance) balanceResponse {
    return balanceResponse{
        Income:   b.Income.Decimal().String(),
        Expenses: b.Expenses.Decimal().String(),
        Net:      b.Net.Decimal().String(),
        Currency: b.Net.Curr().Code(),
        Status:   string(b.Status),
    }
}

func toEntryResponse(e ledger.Entry) entryResponse {
    return entryResponse{
        ID:            e.ID,
        Kind:          e.Kind.String(),
        Amount:        e.Amount.Decimal().String(),
        AmountMinor:   ledger.MinorUnits(e.Amount),
        Currency:      e.Amount.Curr().Code(),
        Description:   e.Description,
        ActorID:       e.ActorID,
        ActorName:     e.ActorName,
        AttachmentRef: e.AttachmentRef,
        CreatedAt:     e.CreatedAt.UTC(),
    }
}

func toParticipantResponse(p ledger.Participant) participantResponse {
    return participantResponse{ID: p.ID, Handle: p.Handle, DisplayName: p.DisplayName, FirstSeenAt: p.FirstSeenAt.UTC()}
}
