package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/metagate/metagate/adapters/sqlite"
)

func TestOpen_BadPath(t *testing.T) {
	// Connections are lazy; an unreachable path surfaces on first use.
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "no-such-dir", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err == nil {
		t.Fatal("expected error migrating an unreachable database path")
	}
}

func TestHealthCheck(t *testing.T) {
	db := setupTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil", err)
	}
}

func TestHealthCheck_Closed(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.Close()

	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() on a closed database = nil, want error")
	}
}
