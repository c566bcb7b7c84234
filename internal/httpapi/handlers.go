package httpapi

import (
    "bytes"
    "net/http"
    "strconv"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/ledger"
    "github.com/tinoosan/groupledger/internal/statement"
)

// getBalance always answers 200; a degraded read is reported in the status field.
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
    b, err := s.journal.Balance(r.Context())
    if err != nil {
        s.log.Warn("serving degraded balance", "err", err)
    }
    toJSON(w, http.StatusOK, toBalanceResponse(b))
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
    limit, err := limitParam(r, ledger.InteractiveHistoryLimit)
    if err != nil { writeErr(w, err); return }
    entries, err := s.journal.Recent(r.Context(), limit)
    if err != nil { writeErr(w, err); return }
    out := make([]entryResponse, 0, len(entries))
    for _, e := range entries { out = append(out, toEntryResponse(e)) }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
    ps, err := s.participants.List(r.Context())
    if err != nil { writeErr(w, err); return }
    out := make([]participantResponse, 0, len(ps))
    for _, p := range ps { out = append(out, toParticipantResponse(p)) }
    toJSON(w, http.StatusOK, out)
}

func (s *Server) getStatement(w http.ResponseWriter, r *http.Request) {
    limit, err := limitParam(r, ledger.StatementLimit)
    if err != nil { writeErr(w, err); return }
    entries, err := s.journal.Recent(r.Context(), limit)
    if err != nil { writeErr(w, err); return }

    var buf bytes.Buffer
    if err := statement.Write(&buf, entries, s.loc); err != nil {
        s.log.Error("render statement", "err", err)
        writeErr(w, err)
        return
    }
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(buf.Bytes())
}

// limitParam reads ?limit, falling back to def when absent.
func limitParam(r *http.Request, def int) (int, error) {
    raw := r.URL.Query().Get("limit")
    if raw == "" { return def, nil }
    n, err := strconv.Atoi(raw)
    if err != nil || n <= 0 { return 0, errs.Invalid("limit", "must be a positive integer") }
    return n, nil
}
