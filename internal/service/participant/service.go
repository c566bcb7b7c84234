// Package participant keeps the roster of everyone who has posted to the ledger.
// Registration is an upsert: the latest handle and display name win, first_seen_at is kept.
package participant

import (
    "context"
    "errors"
    "log/slog"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/ledger"
)

type Repo interface {
    ListParticipants(ctx context.Context) ([]ledger.Participant, error)
}

type Writer interface {
    UpsertParticipant(ctx context.Context, p ledger.Participant) error
}

// RegisterInput identifies a participant. Handle is optional.
type RegisterInput struct {
    ID          string  `validate:"required,max=50"`
    Handle      *string `validate:"omitempty,max=100"`
    DisplayName string  `validate:"required,max=100"`
}

type Service interface {
    Register(ctx context.Context, in RegisterInput) error
    List(ctx context.Context) ([]ledger.Participant, error)
}

type service struct {
    repo     Repo
    writer   Writer
    validate *validator.Validate
    log      *slog.Logger
}

func New(repo Repo, writer Writer, log *slog.Logger) Service {
    if log == nil { log = slog.Default() }
    return &service{repo: repo, writer: writer, validate: validator.New(), log: log}
}

func (s *service) Register(ctx context.Context, in RegisterInput) error {
    in.ID = strings.TrimSpace(in.ID)
    in.DisplayName = strings.TrimSpace(in.DisplayName)
    if in.Handle != nil {
        h := strings.TrimPrefix(strings.TrimSpace(*in.Handle), "@")
        if h == "" { in.Handle = nil } else { in.Handle = &h }
    }
    if err := s.validate.Struct(in); err != nil {
        err = fieldErr(err)
        s.log.Debug("participant rejected", "id", in.ID, "err", err)
        return err
    }

    p := ledger.Participant{ID: in.ID, Handle: in.Handle, DisplayName: in.DisplayName}
    if err := s.writer.UpsertParticipant(ctx, p); err != nil {
        s.log.Error("register participant failed", "op", "register_participant", "id", in.ID, "err", err)
        if errors.Is(err, errs.ErrStorageUnavailable) || errors.Is(err, errs.ErrRecordFailed) { return err }
        return errs.RecordFailed("register_participant", err)
    }
    return nil
}

// List returns every participant ordered by first appearance.
func (s *service) List(ctx context.Context) ([]ledger.Participant, error) {
    out, err := s.repo.ListParticipants(ctx)
    if err != nil {
        s.log.Error("list participants failed", "op", "list_participants", "err", err)
        return []ledger.Participant{}, err
    }
    if out == nil { out = []ledger.Participant{} }
    return out, nil
}

func fieldErr(err error) error {
    var ves validator.ValidationErrors
    if !errors.As(err, &ves) || len(ves) == 0 { return errs.Invalid("", err.Error()) }
    fe := ves[0]
    field := map[string]string{"ID": "id", "Handle": "handle", "DisplayName": "display_name"}[fe.Field()]
    if fe.Tag() == "max" { return errs.Invalid(field, "at most "+fe.Param()+" characters") }
    return errs.Invalid(field, fe.Tag())
}
