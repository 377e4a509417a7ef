package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpenAndHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if db.Path() == "" {
		t.Error("Path() returned empty string")
	}
}

func TestDurabilityToggles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.RelaxDurability(ctx); err != nil {
		t.Fatalf("RelaxDurability() error = %v", err)
	}

	// Writes must still work while durability is relaxed.
	if _, err := db.ExecContext(ctx, "CREATE TABLE t (x INTEGER)"); err != nil {
		t.Fatalf("write with relaxed durability: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO t (x) VALUES (1)"); err != nil {
		t.Fatalf("insert with relaxed durability: %v", err)
	}

	if err := db.RestoreDurability(ctx); err != nil {
		t.Fatalf("RestoreDurability() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260110_090000_initial_schema.up.sql", "20260110_090000", true, true},
		{"20260110_090000_initial_schema.down.sql", "20260110_090000", false, true},
		{"README.md", "", false, false},
		{"noversion.up.sql", "", false, false},
		{"20260110_090000.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestMigrationName(t *testing.T) {
	if got := migrationName("20260110_090000_initial_schema.up.sql"); got != "initial_schema" {
		t.Errorf("migrationName() = %q, want initial_schema", got)
	}
}
