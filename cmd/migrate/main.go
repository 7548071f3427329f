// migrate applies, reverts, and reports the versioned database schema.
//
//	migrate up            apply every pending migration
//	migrate down [-n N]   revert the last N applied migrations (default 1)
//	migrate status        list applied and pending migrations
//
// Connection settings come from the same DB_* environment variables as the
// server, unless --dsn is given.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/pflag"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/logging"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logging.Setup()

	var dsn string
	var steps int
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", "", "database connection string (default: built from DB_* variables)")
	flagSet.IntVarP(&steps, "steps", "n", 1, "number of migrations to revert with down")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) != 1 {
		printHelp(flagSet)
		return fmt.Errorf("expected exactly one command, got %d", len(args))
	}

	if dsn == "" {
		dsn = config.Load().DSN()
	}

	migs, err := migrations.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	runner := migrations.NewRunner(conn, migs)

	switch args[0] {
	case "up":
		n, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		slog.Info("migrations complete", "applied", n)
	case "down":
		n, err := runner.Down(ctx, steps)
		if err != nil {
			return err
		}
		slog.Info("migrations reverted", "reverted", n)
	case "status":
		states, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range states {
			applied := "pending"
			if s.Applied() {
				applied = s.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Printf("%04d  %-24s %s\n", s.Version, s.Name, applied)
		}
	default:
		printHelp(flagSet)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: migrate [flags] up|down|status\n\nFlags:\n")
	flagSet.PrintDefaults()
}
