package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

// Commands lists every subcommand the binary exposes.
var Commands = []subcommands.Command{
	&serveCmd{},
	&migrateCmd{},
	&recordCmd{},
	&registerCmd{},
	&balanceCmd{},
	&historyCmd{},
	&membersCmd{},
	&statementCmd{},
	&resetCmd{},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}
