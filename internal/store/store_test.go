package store

import (
	"os"
	"path/filepath"
	"testing"
)

func freshDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lapsim.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDBInitializesSchemaConsistentWithMigrations(t *testing.T) {
	// NewDB itself verifies schema.sql matches the latest migration before
	// baselining; a successful open is the assertion.
	freshDB(t)
}

func TestVehicleRoundTrip(t *testing.T) {
	db := freshDB(t)

	id, err := db.InsertVehicle("formula-car", []byte(`{"curb_mass":250}`))
	if err != nil {
		t.Fatalf("InsertVehicle: %v", err)
	}

	name, params, err := db.GetVehicle(id)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if name != "formula-car" {
		t.Errorf("name = %q, want formula-car", name)
	}
	if string(params) != `{"curb_mass":250}` {
		t.Errorf("params = %s, want the inserted JSON", params)
	}
}

func TestSolutionsListedNewestFirst(t *testing.T) {
	db := freshDB(t)

	vehicleID, err := db.InsertVehicle("car", []byte(`{}`))
	if err != nil {
		t.Fatalf("InsertVehicle: %v", err)
	}
	meshID, err := db.InsertTrackMesh("autocross", "OPEN", []byte(`{}`))
	if err != nil {
		t.Fatalf("InsertTrackMesh: %v", err)
	}

	if _, err := db.InsertSolution(vehicleID, meshID, 40.0, 1000, []byte(`{}`)); err != nil {
		t.Fatalf("InsertSolution: %v", err)
	}
	secondID, err := db.InsertSolution(vehicleID, meshID, 38.5, 1000, []byte(`{}`))
	if err != nil {
		t.Fatalf("InsertSolution: %v", err)
	}

	got, err := db.ListSolutions(vehicleID, 10)
	if err != nil {
		t.Fatalf("ListSolutions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].ID != secondID {
		t.Errorf("most recent solution listed first: got %s, want %s", got[0].ID, secondID)
	}
}

func TestCompetitionRunRoundTrip(t *testing.T) {
	db := freshDB(t)

	vehicleID, _ := db.InsertVehicle("car", []byte(`{}`))
	meshID, _ := db.InsertTrackMesh("autocross", "OPEN", []byte(`{}`))
	accelID, _ := db.InsertSolution(vehicleID, meshID, 4.0, 75, []byte(`{}`))
	skidID, _ := db.InsertSolution(vehicleID, meshID, 5.0, 57, []byte(`{}`))
	autoID, _ := db.InsertSolution(vehicleID, meshID, 55.0, 1000, []byte(`{}`))
	endID, _ := db.InsertSolution(vehicleID, meshID, 900.0, 24000, []byte(`{}`))

	runID, err := db.InsertCompetitionRun(vehicleID, accelID, skidID, autoID, endID, 812.5)
	if err != nil {
		t.Fatalf("InsertCompetitionRun: %v", err)
	}

	runs, err := db.ListCompetitionRuns(vehicleID, 5)
	if err != nil {
		t.Fatalf("ListCompetitionRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("ListCompetitionRuns = %+v, want one run with id %s", runs, runID)
	}
	if runs[0].TotalPoints != 812.5 {
		t.Errorf("TotalPoints = %f, want 812.5", runs[0].TotalPoints)
	}
}

func TestGetDatabaseStatsReportsAllTables(t *testing.T) {
	db := freshDB(t)

	stats, err := db.GetDatabaseStats()
	if err != nil {
		t.Fatalf("GetDatabaseStats: %v", err)
	}

	want := map[string]bool{
		"vehicles": false, "track_meshes": false, "solutions": false,
		"sweep_runs": false, "competition_runs": false,
	}
	for _, tbl := range stats.Tables {
		if _, ok := want[tbl.Name]; ok {
			want[tbl.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("GetDatabaseStats missing table %q", name)
		}
	}
}

func TestDevModeUsesFilesystemMigrations(t *testing.T) {
	old := DevMode
	DevMode = true
	defer func() { DevMode = old }()

	if _, err := getMigrationsFS(); err != nil {
		// internal/store/migrations is relative to the repo root, which
		// may not be the test's working directory; this only checks the
		// embedded-vs-filesystem switch doesn't panic.
		if _, statErr := os.Stat("migrations"); statErr == nil {
			t.Fatalf("getMigrationsFS: %v", err)
		}
	}
}
