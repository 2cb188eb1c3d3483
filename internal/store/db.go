package store

import (
	"compress/gzip"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

// schema.sql contains the SQL statements for creating the database schema:
// vehicles, track meshes, solutions, sweep runs, and competition runs.
// The schema is embedded directly into the binary and executed when a new
// database is created via the NewDB function, ensuring consistent schema
// across all deployments.
//
// CRITICAL: schema.sql MUST be kept in sync with the latest migration version.
// When creating a fresh database, we verify that schema.sql matches the schema produced
// by applying all migrations. If they differ, database initialization fails with a clear
// error message. This prevents silently creating databases with incomplete schemas.
// To regenerate schema.sql from migrations, export the schema from a migrated database:
//   sqlite3 migrated.db .schema > internal/store/schema.sql

//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode controls whether to use filesystem or embedded migrations.
// Set to true in development for hot-reloading, false in production.
var DevMode = false

// getMigrationsFS returns the appropriate filesystem for migrations.
// In dev mode, uses the local filesystem for hot-reloading.
// In production, uses the embedded filesystem.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		// Development: use local filesystem
		return os.DirFS("internal/store/migrations"), nil
	}
	// Production: use embedded filesystem
	// The embed directive includes "migrations/*.sql", so we need to extract just the migrations subdir
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-filesystem for embedded migrations directory %q: %w", "migrations", err)
	}
	return subFS, nil
}

// applyPragmas applies essential SQLite PRAGMAs for performance and concurrency.
// These settings are extracted from schema.sql and applied to all databases
// regardless of whether they were created from scratch or via migrations.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", p, err)
		}
	}
	return nil
}

func NewDB(path string) (*DB, error) {
	return NewDBWithMigrationCheck(path, true)
}

// NewDBWithMigrationCheck opens a database and optionally checks for pending migrations.
// If checkMigrations is true and migrations are pending, returns an error prompting user to run migrations.
func NewDBWithMigrationCheck(path string, checkMigrations bool) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	dbWrapper := &DB{db}

	// Apply essential PRAGMAs for all databases, regardless of how they were created.
	// These settings are critical for performance and concurrency:
	// - WAL mode allows concurrent reads and writes
	// - busy_timeout prevents immediate "database is locked" errors
	// - NORMAL synchronous mode balances safety and performance
	// - MEMORY temp_store improves query performance
	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("failed to apply PRAGMAs: %w", err)
	}

	// Check if schema_migrations table exists
	var schemaMigrationsExists bool
	err = db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&schemaMigrationsExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check for schema_migrations table: %w", err)
	}

	// Get migrations filesystem
	migrationsFS, err := getMigrationsFS()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations filesystem: %w", err)
	}

	// Case 1: Database with migration history - check if migrations are needed
	if schemaMigrationsExists {
		if checkMigrations {
			shouldExit, err := dbWrapper.CheckAndPromptMigrations(migrationsFS)
			if shouldExit {
				return nil, err
			}
		}
		return dbWrapper, nil
	}

	// Case 2: Database without schema_migrations table
	// Check if this is a legacy database (has tables) or a fresh database
	var tableCount int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
	`).Scan(&tableCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	isLegacyDB := (tableCount > 0)

	// Case 2a: Legacy database without migration history - detect and baseline
	if isLegacyDB && checkMigrations {
		log.Printf("⚠️  Database exists but has no schema_migrations table!")
		log.Printf("   Attempting to detect schema version...")

		detectedVersion, matchScore, differences, err := dbWrapper.DetectSchemaVersion(migrationsFS)
		if err != nil {
			return nil, fmt.Errorf("failed to detect schema version: %w", err)
		}

		log.Printf("   Schema detection results:")
		log.Printf("   - Best match: version %d (score: %d%%)", detectedVersion, matchScore)

		if matchScore == 100 {
			// Perfect match - baseline at this version
			log.Printf("   - Perfect match! Baselining at version %d", detectedVersion)
			if err := dbWrapper.BaselineAtVersion(detectedVersion); err != nil {
				return nil, fmt.Errorf("failed to baseline at version %d: %w", detectedVersion, err)
			}

			// Check if more migrations are needed
			latestVersion, err := GetLatestMigrationVersion(migrationsFS)
			if err != nil {
				return nil, fmt.Errorf("failed to get latest version: %w", err)
			}

			if detectedVersion < latestVersion {
				log.Printf("")
				log.Printf("   Database has been baselined at version %d", detectedVersion)
				log.Printf("   There are %d additional migrations available (up to version %d)",
					latestVersion-detectedVersion, latestVersion)
				log.Printf("")
				log.Printf("   To apply remaining migrations, run:")
				log.Printf("      lapsim-migrate up")
				log.Printf("")
				return nil, fmt.Errorf("database baselined at version %d, but migrations to version %d are available. Please run migrations", detectedVersion, latestVersion)
			}

			log.Printf("   Database is up to date!")
			return dbWrapper, nil
		}

		// Not a perfect match - show differences and ask user
		log.Printf("   - No perfect match found (best: %d%%)", matchScore)
		log.Printf("")
		log.Printf("   Schema differences from version %d:", detectedVersion)
		for _, diff := range differences {
			log.Printf("     %s", diff)
		}
		log.Printf("")
		log.Printf("   The current schema does not exactly match any known migration version.")
		log.Printf("   Closest match is version %d with %d%% similarity.", detectedVersion, matchScore)
		log.Printf("")
		log.Printf("   Options:")
		log.Printf("   1. Baseline at version %d and apply remaining migrations:", detectedVersion)
		log.Printf("      lapsim-migrate baseline %d", detectedVersion)
		log.Printf("      lapsim-migrate up")
		log.Printf("")
		log.Printf("   2. Manually inspect the differences and adjust your schema")
		log.Printf("")
		return nil, fmt.Errorf("schema does not match any known version (best match: v%d at %d%%). Manual intervention required", detectedVersion, matchScore)
	}

	// Case 2b: Fresh database - initialize with schema.sql and baseline at latest version
	_, err = db.Exec(schemaSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Println("ran database initialisation script")

	// Get latest migration version
	latestVersion, err := GetLatestMigrationVersion(migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest migration version: %w", err)
	}

	// Verify that schema.sql is in sync with the latest migration version
	// by comparing the schema we just created with what the migrations would produce.
	// This prevents incorrect baselining if schema.sql is out of date.
	schemaFromSQL, err := dbWrapper.GetDatabaseSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema from schema.sql: %w", err)
	}

	schemaFromMigrations, err := dbWrapper.GetSchemaAtMigration(migrationsFS, latestVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema at migration v%d: %w", latestVersion, err)
	}

	score, differences := CompareSchemas(schemaFromSQL, schemaFromMigrations)
	if score != 100 {
		log.Printf("⚠️  WARNING: schema.sql is out of sync with migrations!")
		log.Printf("   Schema from schema.sql differs from migration v%d (similarity: %d%%)", latestVersion, score)
		log.Printf("   Differences:")
		for _, diff := range differences {
			log.Printf("     %s", diff)
		}
		log.Printf("")
		log.Printf("   This indicates that schema.sql needs to be updated to match the latest migrations.")
		log.Printf("   Please run the schema consistency test or regenerate schema.sql from migrations.")
		log.Printf("")
		return nil, fmt.Errorf("schema.sql is out of sync with migration v%d (similarity: %d%%). Cannot baseline safely", latestVersion, score)
	}

	// Schema is consistent - safe to baseline at latest version
	if err := dbWrapper.BaselineAtVersion(latestVersion); err != nil {
		return nil, fmt.Errorf("failed to baseline fresh database at version %d: %w", latestVersion, err)
	}

	// Verify baseline was successful
	currentVersion, _, err := dbWrapper.MigrateVersion(migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("failed to verify baseline: %w", err)
	}
	if currentVersion != latestVersion {
		return nil, fmt.Errorf("baseline verification failed: expected version %d, got %d", latestVersion, currentVersion)
	}

	return dbWrapper, nil
}

// OpenDB opens a database connection without running schema initialization.
// This is useful for migration commands that manage schema independently.
// Note: PRAGMAs are still applied for performance and concurrency.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Apply PRAGMAs even for migration commands
	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("failed to apply PRAGMAs: %w", err)
	}

	return &DB{db}, nil
}

// InsertVehicle persists a vehicle's name and JSON-encoded VehicleParams,
// returning the newly-minted vehicle id.
func (db *DB) InsertVehicle(name string, paramsJSON json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO vehicles (id, name, params_json) VALUES (?, ?, ?)`,
		id, name, string(paramsJSON),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetVehicle loads a vehicle's JSON-encoded VehicleParams by id.
func (db *DB) GetVehicle(id string) (name string, paramsJSON json.RawMessage, err error) {
	var raw string
	row := db.QueryRow(`SELECT name, params_json FROM vehicles WHERE id = ?`, id)
	if err := row.Scan(&name, &raw); err != nil {
		return "", nil, err
	}
	return name, json.RawMessage(raw), nil
}

// InsertTrackMesh persists a named, JSON-encoded TrackMesh.
func (db *DB) InsertTrackMesh(name, configuration string, meshJSON json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO track_meshes (id, name, configuration, mesh_json) VALUES (?, ?, ?, ?)`,
		id, name, configuration, string(meshJSON),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetTrackMesh loads a track mesh's JSON encoding by id.
func (db *DB) GetTrackMesh(id string) (name, configuration string, meshJSON json.RawMessage, err error) {
	var raw string
	row := db.QueryRow(`SELECT name, configuration, mesh_json FROM track_meshes WHERE id = ?`, id)
	if err := row.Scan(&name, &configuration, &raw); err != nil {
		return "", "", nil, err
	}
	return name, configuration, json.RawMessage(raw), nil
}

// InsertSolution persists one solved lap, keyed to the vehicle and track
// mesh it was computed from.
func (db *DB) InsertSolution(vehicleID, trackMeshID string, totalTime, totalLength float64, solutionJSON json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO solutions (id, vehicle_id, track_mesh_id, total_time, total_length, solution_json) VALUES (?, ?, ?, ?, ?, ?)`,
		id, vehicleID, trackMeshID, totalTime, totalLength, string(solutionJSON),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SolutionSummary is the row shape returned by ListSolutions.
type SolutionSummary struct {
	ID          string
	VehicleID   string
	TrackMeshID string
	TotalTime   float64
	TotalLength float64
}

// ListSolutions returns the most recent solutions for a vehicle, newest first.
func (db *DB) ListSolutions(vehicleID string, limit int) ([]SolutionSummary, error) {
	rows, err := db.Query(
		`SELECT id, vehicle_id, track_mesh_id, total_time, total_length FROM solutions WHERE vehicle_id = ? ORDER BY rowid DESC LIMIT ?`,
		vehicleID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SolutionSummary
	for rows.Next() {
		var s SolutionSummary
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.TrackMeshID, &s.TotalTime, &s.TotalLength); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// InsertSweepRun persists the full {value -> points} series of a 1D
// parameter sweep, along with the request parameters that produced it.
func (db *DB) InsertSweepRun(vehicleID, parameterName string, start, end float64, n int, resultsJSON json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO sweep_runs (id, vehicle_id, parameter_name, range_start, range_end, sample_count, results_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, vehicleID, parameterName, start, end, n, string(resultsJSON),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetSweepRun loads a sweep run's result series by id.
func (db *DB) GetSweepRun(id string) (parameterName string, resultsJSON json.RawMessage, err error) {
	var raw string
	row := db.QueryRow(`SELECT parameter_name, results_json FROM sweep_runs WHERE id = ?`, id)
	if err := row.Scan(&parameterName, &raw); err != nil {
		return "", nil, err
	}
	return parameterName, json.RawMessage(raw), nil
}

// InsertCompetitionRun persists one competition's four event-solution ids
// and its aggregate points total.
func (db *DB) InsertCompetitionRun(vehicleID, accelerationSolutionID, skidpadSolutionID, autocrossSolutionID, enduranceSolutionID string, totalPoints float64) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO competition_runs
			(id, vehicle_id, acceleration_solution_id, skidpad_solution_id, autocross_solution_id, endurance_solution_id, total_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, vehicleID, accelerationSolutionID, skidpadSolutionID, autocrossSolutionID, enduranceSolutionID, totalPoints,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CompetitionRunSummary is the row shape returned by ListCompetitionRuns.
type CompetitionRunSummary struct {
	ID          string
	VehicleID   string
	TotalPoints float64
}

// ListCompetitionRuns returns the most recent competition runs for a
// vehicle, newest first.
func (db *DB) ListCompetitionRuns(vehicleID string, limit int) ([]CompetitionRunSummary, error) {
	rows, err := db.Query(
		`SELECT id, vehicle_id, total_points FROM competition_runs WHERE vehicle_id = ? ORDER BY rowid DESC LIMIT ?`,
		vehicleID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompetitionRunSummary
	for rows.Next() {
		var s CompetitionRunSummary
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type TableStats struct {
	Name     string  `json:"name"`
	RowCount int64   `json:"row_count"`
	SizeMB   float64 `json:"size_mb"`
}

// DatabaseStats contains overall database statistics.
type DatabaseStats struct {
	TotalSizeMB float64      `json:"total_size_mb"`
	Tables      []TableStats `json:"tables"`
}

// GetDatabaseStats returns size and row count information for all tables in the database.
// Uses SQLite's dbstat virtual table to get accurate size information.
func (db *DB) GetDatabaseStats() (*DatabaseStats, error) {
	// Get total database size using page_count * page_size
	var totalPages, pageSize int64
	row := db.QueryRow("SELECT page_count, page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&totalPages, &pageSize); err != nil {
		// Fallback: try individual pragmas
		if err := db.QueryRow("PRAGMA page_count").Scan(&totalPages); err != nil {
			return nil, fmt.Errorf("failed to get page count: %w", err)
		}
		if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
			return nil, fmt.Errorf("failed to get page size: %w", err)
		}
	}
	totalSizeMB := float64(totalPages*pageSize) / (1024 * 1024)

	// Get list of tables
	tablesQuery := `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	rows, err := db.Query(tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tableNames = append(tableNames, name)
	}

	// Get stats for each table
	var tables []TableStats
	for _, tableName := range tableNames {
		var rowCount int64
		// Build the COUNT(*) query dynamically with a quoted table name.
		// SQL/SQLite prepared statements only parameterize values, not identifiers,
		// so table names cannot be bound as parameters. Here tableName comes from
		// sqlite_master (trusted metadata), and %q applies proper SQLite identifier
		// quoting, so this is not a SQL injection risk.
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)
		if err := db.QueryRow(countQuery).Scan(&rowCount); err != nil {
			// Table might be empty or have issues, continue with 0
			rowCount = 0
		}

		// Get size using dbstat virtual table (if available)
		var sizeMB float64
		sizeQuery := `SELECT COALESCE(SUM(pgsize), 0) / 1048576.0 FROM dbstat WHERE name = ?`
		if err := db.QueryRow(sizeQuery, tableName).Scan(&sizeMB); err != nil {
			// dbstat might not be available; report the size as 0
			sizeMB = 0
		}

		tables = append(tables, TableStats{
			Name:     tableName,
			RowCount: rowCount,
			SizeMB:   math.Round(sizeMB*100) / 100, // Round to 2 decimal places
		})
	}

	// Sort tables by size descending
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].SizeMB > tables[j].SizeMB
	})

	return &DatabaseStats{
		TotalSizeMB: math.Round(totalSizeMB*100) / 100,
		Tables:      tables,
	}, nil
}

func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://lapsim.db", db.DB, &tailsql.DBOptions{
		Label: "Lap-Time Solver DB",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("db-stats", "Database table sizes and disk usage (JSON)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		stats, err := db.GetDatabaseStats()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get database stats: %v", err), http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			http.Error(w, fmt.Sprintf("Failed to encode stats: %v", err), http.StatusInternalServerError)
			return
		}
	}))

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		// Send the backup file to the client
		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}

		// close the backup file after sending it
		// and remove it from the filesystem
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := gzipWriter.Write([]byte{}); err != nil {
			// Need to write something to initialize the gzip header
			http.Error(w, fmt.Sprintf("Failed to initialize gzip writer: %v", err), http.StatusInternalServerError)
			return
		}

		// Copy the backup file content to the gzip writer
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
