// Command lapsim-migrate manages the schema of a lapsimd SQLite store
// independently of server startup: apply, roll back, or inspect migrations.
package main

import (
	"flag"
	"os"

	"github.com/fsae-sim/laptimesim/internal/store"
)

func main() {
	dbPath := flag.String("db-path", "lapsim.db", "Path to the SQLite store")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		store.PrintMigrateHelp()
		os.Exit(1)
	}

	store.RunMigrateCommand(args, *dbPath)
}
