package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/govalues/money"

	"github.com/tinoosan/groupledger/internal/errs"
	"github.com/tinoosan/groupledger/internal/ledger"
	"github.com/tinoosan/groupledger/internal/service/journal"
	"github.com/tinoosan/groupledger/internal/service/participant"
	"github.com/tinoosan/groupledger/internal/statement"
)

// run loads the app, hands it to fn and closes it. Errors go to stderr.
func run(ctx context.Context, fn func(context.Context, *app, io.Writer) error) subcommands.ExitStatus {
	a, err := loadApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := fn(ctx, a, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		if errors.Is(err, errs.ErrValidation) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// userMessage turns a service error into something a participant can act on.
func userMessage(err error) string {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Error: " + ve.Error()
	case errors.Is(err, errs.ErrStorageUnavailable):
		return "Ledger storage is unavailable right now. Please try again."
	case errors.Is(err, errs.ErrRecordFailed):
		return "Failed to record the entry. Please try again."
	case errors.Is(err, errs.ErrResetDisabled):
		return "Reset is disabled to keep the ledger history safe."
	default:
		return err.Error()
	}
}

type recordCmd struct {
	kind       string
	actorID    string
	actorName  string
	handle     string
	attachment string
}

func (*recordCmd) Name() string { return "record" }
func (*recordCmd) Synopsis() string { return "post an income or expense entry" }
func (*recordCmd) Usage() string {
	return `record -kind income|expense -actor <id> -name <display name> [-handle <h>] [-attachment <ref>] <amount> <description...>

  Registers the actor, records the entry and prints it with the new balance.
  Example: record -kind expense -actor 42 -name Asha 250 Coffee and snacks
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "Entry kind: income or expense.")
	f.StringVar(&c.actorID, "actor", "", "Stable id of the participant posting the entry.")
	f.StringVar(&c.actorName, "name", "", "Display name of the participant.")
	f.StringVar(&c.handle, "handle", "", "Optional handle of the participant.")
	f.StringVar(&c.attachment, "attachment", "", "Optional receipt reference stored with the entry.")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app, w io.Writer) error {
		return c.run(ctx, a, w, f.Args())
	})
}

func (c *recordCmd) run(ctx context.Context, a *app, w io.Writer, args []string) error {
	kind, err := ledger.ParseKind(c.kind)
	if err != nil {
		return errs.Invalid("kind", "must be income or expense")
	}
	amount, desc, err := parseAmountDescription(a.cfg.Currency, strings.Join(args, " "))
	if err != nil {
		return err
	}

	reg := participant.RegisterInput{ID: c.actorID, DisplayName: c.actorName, Handle: optional(c.handle)}
	if err := a.participants.Register(ctx, reg); err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return err
		}
		a.log.Warn("participant not registered; recording anyway", "actor_id", c.actorID, "err", err)
	}

	e, err := a.journal.RecordEntry(ctx, journal.RecordInput{
		Kind:          kind,
		Amount:        amount,
		Description:   desc,
		ActorID:       c.actorID,
		ActorName:     c.actorName,
		AttachmentRef: optional(c.attachment),
	})
	if err != nil {
		return err
	}

	title := "Income"
	if e.Kind == ledger.KindExpense {
		title = "Expense"
	}
	fmt.Fprintf(w, "%s added successfully!\n", title)
	fmt.Fprintf(w, "Amount: %s\n", e.Amount.Decimal())
	fmt.Fprintf(w, "Description: %s\n", e.Description)
	fmt.Fprintf(w, "Added by: %s\n", e.ActorName)
	if e.AttachmentRef != nil {
		fmt.Fprintln(w, "Receipt saved")
	}
	if b, err := a.journal.Balance(ctx); err == nil {
		fmt.Fprintf(w, "Current Balance: %s\n", b.Net.Decimal())
	}
	fmt.Fprintf(w, "Transaction ID: %s\n", e.ID)
	return nil
}

// parseAmountDescription splits "250 Coffee and snacks" into amount and description.
func parseAmountDescription(curr, text string) (amt money.Amount, desc string, err error) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return amt, "", errs.Invalid("", "please provide amount and description")
	}
	amt, err = ledger.ParseAmount(curr, parts[0])
	if err != nil {
		return amt, "", errs.Invalid("amount", "invalid amount format")
	}
	return amt, strings.TrimSpace(parts[1]), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

type registerCmd struct {
	id     string
	name   string
	handle string
}

func (*registerCmd) Name() string { return "register" }
func (*registerCmd) Synopsis() string { return "add or refresh a participant" }
func (*registerCmd) Usage() string {
	return `register -id <id> -name <display name> [-handle <h>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Stable participant id.")
	f.StringVar(&c.name, "name", "", "Display name.")
	f.StringVar(&c.handle, "handle", "", "Optional handle.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

func (c *registerCmd) run(ctx context.Context, a *app, w io.Writer) error {
	if err := a.participants.Register(ctx, participant.RegisterInput{ID: c.id, DisplayName: c.name, Handle: optional(c.handle)}); err != nil {
		return err
	}
	fmt.Fprintf(w, "Welcome, %s!\n", strings.TrimSpace(c.name))
	return nil
}

type balanceCmd struct{}

func (*balanceCmd) Name() string { return "balance" }
func (*balanceCmd) Synopsis() string { return "show total income, expenses and the current balance" }
func (*balanceCmd) Usage() string { return "balance\n" }
func (*balanceCmd) SetFlags(*flag.FlagSet) {}
func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

// run prints the balance even when degraded; the zero figures are flagged.
func (*balanceCmd) run(ctx context.Context, a *app, w io.Writer) error {
	b, err := a.journal.Balance(ctx)
	fmt.Fprintln(w, "Group Financial Status:")
	fmt.Fprintf(w, "Total Income: %s\n", b.Income.Decimal())
	fmt.Fprintf(w, "Total Expenses: %s\n", b.Expenses.Decimal())
	fmt.Fprintf(w, "Current Balance: %s\n", b.Net.Decimal())
	if b.Status != ledger.BalanceOK {
		fmt.Fprintln(w, "(figures unavailable: storage could not be reached)")
	}
	return err
}

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string { return "history" }
func (*historyCmd) Synopsis() string { return "list the most recent entries" }
func (*historyCmd) Usage() string { return "history [-n 10]\n" }
func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", ledger.InteractiveHistoryLimit, "Number of entries to show.")
}
func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

func (c *historyCmd) run(ctx context.Context, a *app, w io.Writer) error {
	entries, err := a.journal.Recent(ctx, c.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return nil
	}
	fmt.Fprintln(w, "Recent Transaction History")
	for _, e := range entries {
		sign := "+"
		if e.Kind == ledger.KindExpense {
			sign = "-"
		}
		fmt.Fprintf(w, "%s%s  %s  %s  %s  %s\n", sign, e.Amount.Decimal(), e.Description, e.ActorName, e.CreatedAt.Format("01-02 15:04"), e.ID)
	}
	return nil
}

type membersCmd struct{}

func (*membersCmd) Name() string { return "members" }
func (*membersCmd) Synopsis() string { return "list participants in order of first appearance" }
func (*membersCmd) Usage() string { return "members\n" }
func (*membersCmd) SetFlags(*flag.FlagSet) {}
func (c *membersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

func (*membersCmd) run(ctx context.Context, a *app, w io.Writer) error {
	ps, err := a.participants.List(ctx)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		fmt.Fprintln(w, "No members found.")
		return nil
	}
	fmt.Fprintln(w, "Group Members:")
	for i, p := range ps {
		handle := "No username"
		if p.Handle != nil {
			handle = "@" + *p.Handle
		}
		fmt.Fprintf(w, "%d. %s  %s  joined %s\n", i+1, p.DisplayName, handle, p.FirstSeenAt.Format("2006-01-02"))
	}
	return nil
}

type statementCmd struct {
	limit int
}

func (*statementCmd) Name() string { return "statement" }
func (*statementCmd) Synopsis() string { return "print a spreadsheet-ready statement of recent entries" }
func (*statementCmd) Usage() string { return "statement [-n 50]\n" }
func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", ledger.StatementLimit, "Number of entries to include.")
}
func (c *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

func (c *statementCmd) run(ctx context.Context, a *app, w io.Writer) error {
	entries, err := a.journal.Recent(ctx, c.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transactions for statement.")
		return nil
	}
	return statement.Write(w, entries, nil)
}

type resetCmd struct{}

func (*resetCmd) Name() string { return "reset" }
func (*resetCmd) Synopsis() string { return "reset the ledger (disabled)" }
func (*resetCmd) Usage() string { return "reset\n" }
func (*resetCmd) SetFlags(*flag.FlagSet) {}
func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.run)
}

// run reports the disabled notice; a disabled reset is not a failure.
func (*resetCmd) run(ctx context.Context, a *app, w io.Writer) error {
	err := a.journal.Reset(ctx)
	if errors.Is(err, errs.ErrResetDisabled) {
		fmt.Fprintln(w, userMessage(err))
		return nil
	}
	return err
}
