package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"courtside/cmd"
	"courtside/database"
)

const usage = `usage:
  courtside                     run the API server
  courtside migrate up          apply all pending migrations
  courtside migrate down [n]    roll back n migrations (default 1)
  courtside migrate status      print the current schema version`

func main() {
	if len(os.Args) > 1 {
		if os.Args[1] != "migrate" {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		if err := runMigration(os.Args[2:]); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func runMigration(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing migration command\n%s", usage)
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command %q\n%s", args[0], usage)
	}
}
