// Command tripledger manages one trip's shared expense ledger from the
// command line: members, expenses, net balances, suggested transfers,
// and the settlement lifecycle.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mkale/tripledger/internal/service"
	"github.com/mkale/tripledger/internal/storage/sqlite"
	"github.com/mkale/tripledger/pkg/logging"
)

func main() {
	// .env is optional; flags and TRIPLEDGER_* env vars take over.
	_ = godotenv.Load()
	logging.Setup()

	rootFlags := ff.NewFlagSet("tripledger")
	app := &app{
		db: rootFlags.StringLong("db", "./data/trip.db", "ledger database path"),
	}

	root := &ff.Command{
		Name:      "tripledger",
		Usage:     "tripledger [FLAGS] SUBCOMMAND ...",
		ShortHelp: "manage a trip's shared expense ledger",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			app.memberCommand(rootFlags),
			app.expenseCommand(rootFlags),
			app.balancesCommand(rootFlags),
			app.transfersCommand(rootFlags),
			app.summaryCommand(rootFlags),
			app.settleCommand(rootFlags),
		},
		Exec: func(ctx context.Context, args []string) error {
			return ff.ErrHelp
		},
	}

	err := root.ParseAndRun(context.Background(), os.Args[1:],
		ff.WithEnvVarPrefix("TRIPLEDGER"),
	)
	switch {
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintln(os.Stderr, ffhelp.Command(root))
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the root flags shared by every subcommand.
type app struct {
	db *string
}

// run opens the ledger database, builds the service, and invokes fn.
func (a *app) run(ctx context.Context, fn func(ctx context.Context, svc *service.LedgerService) error) error {
	store, err := sqlite.New(*a.db)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	return fn(ctx, service.NewLedgerService(store, nil))
}
