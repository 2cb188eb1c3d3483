// Command lapsimd serves the lap-time solver's JSON HTTP API: vehicle and
// track-mesh ingestion, single-lap solving, parameter sweeps, and
// four-event competition runs, all backed by a SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fsae-sim/laptimesim/internal/config"
	"github.com/fsae-sim/laptimesim/internal/httpapi"
	"github.com/fsae-sim/laptimesim/internal/store"
	"github.com/fsae-sim/laptimesim/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	dbPath      = flag.String("db-path", "lapsim.db", "Path to the SQLite store")
	configFile  = flag.String("config", "", "Path to a JSON solver configuration file (defaults to config/solver.defaults.json)")
	versionFlag = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("lapsimd %s\n", version.String())
		return
	}

	settings, err := loadSettings(*configFile)
	if err != nil {
		log.Fatalf("failed to load solver configuration: %v", err)
	}

	db, err := store.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", *dbPath, err)
	}
	defer db.Close()

	server := httpapi.NewServer(db, settings)

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: httpapi.LoggingMiddleware(server.ServeMux()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("lapsimd listening on %s (db: %s)", *listen, *dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func loadSettings(path string) (settings *config.SolverSettings, err error) {
	if path != "" {
		return config.LoadSolverSettings(path)
	}
	defer func() {
		if r := recover(); r != nil {
			settings, err = config.EmptySolverSettings(), nil
		}
	}()
	return config.MustLoadDefaultConfig(), nil
}
