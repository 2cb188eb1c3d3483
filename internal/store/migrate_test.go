package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// setupMigrationTestDB opens a database without running schema.sql, so
// migrations can be exercised from a clean slate.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), t.Name()+".db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{sqlDB}
}

// setupTestMigrations writes a small synthetic two-version migration set to
// a temp directory and returns that directory's path, independent of the real
// migrations/ directory this package embeds.
func setupTestMigrations(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "migrations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir migrations: %v", err)
	}

	files := map[string]string{
		"000001_create_widgets.up.sql":   `CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`,
		"000001_create_widgets.down.sql": `DROP TABLE widgets;`,
		"000002_add_widget_weight.up.sql": `ALTER TABLE widgets ADD COLUMN weight REAL;`,
		"000002_add_widget_weight.down.sql": `CREATE TABLE widgets_new (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
INSERT INTO widgets_new (id, name) SELECT id, name FROM widgets;
DROP TABLE widgets;
ALTER TABLE widgets_new RENAME TO widgets;`,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestMigrateUpAppliesAllVersions(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(os.DirFS(migrationsDir)); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, dirty, err := db.MigrateVersion(os.DirFS(migrationsDir))
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("migration left database dirty")
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	var widgetCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('widgets') WHERE name = 'weight'").Scan(&widgetCount); err != nil {
		t.Fatalf("checking widgets.weight column: %v", err)
	}
	if widgetCount != 1 {
		t.Error("widgets table missing weight column after migrating up")
	}
}

func TestMigrateDownRollsBackOneVersion(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)
	fsys := os.DirFS(migrationsDir)

	if err := db.MigrateUp(fsys); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if err := db.MigrateDown(fsys); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}

	version, _, err := db.MigrateVersion(fsys)
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if version != 1 {
		t.Errorf("version after one rollback = %d, want 1", version)
	}
}

func TestGetLatestMigrationVersionScansFilenames(t *testing.T) {
	migrationsDir := setupTestMigrations(t)
	version, err := GetLatestMigrationVersion(os.DirFS(migrationsDir))
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestCompareSchemasReportsFullMatch(t *testing.T) {
	schema := map[string]string{"widgets": "CREATE TABLE widgets (id INTEGER)"}
	score, diffs := CompareSchemas(schema, schema)
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if len(diffs) != 0 {
		t.Errorf("diffs = %v, want none", diffs)
	}
}

func TestCompareSchemasReportsMismatch(t *testing.T) {
	a := map[string]string{"widgets": "CREATE TABLE widgets (id INTEGER)"}
	b := map[string]string{"widgets": "CREATE TABLE widgets (id INTEGER, name TEXT)"}
	score, diffs := CompareSchemas(a, b)
	if score == 100 {
		t.Error("expected score < 100 for mismatched schema")
	}
	if len(diffs) == 0 {
		t.Error("expected differences to be reported")
	}
}
