package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metagate/metagate/adapters/sqlite"
	"github.com/metagate/metagate/domain/deploy"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "metagate-test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testRecord(id string, at time.Time) deploy.Record {
	return deploy.Record{
		ID:         id,
		ObjectName: "Invoice",
		APIName:    "Invoice__c",
		OrgAlias:   "dev-org",
		FieldCount: 3,
		Status:     deploy.StatusSucceeded,
		Output:     "Deploy Succeeded.",
		DurationMs: 4200,
		CreatedAt:  at,
	}
}

func TestDeploymentStore_RecordAndList(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDeploymentStore(db)
	ctx := context.Background()

	older := testRecord("dep-1", baseTime)
	newer := testRecord("dep-2", baseTime.Add(time.Minute))
	newer.Status = deploy.StatusFailed
	newer.Error = "Error: no org found"

	if err := store.Record(ctx, older); err != nil {
		t.Fatalf("record older: %v", err)
	}
	if err := store.Record(ctx, newer); err != nil {
		t.Fatalf("record newer: %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}

	// Newest first.
	got := records[0]
	if got.ID != "dep-2" {
		t.Errorf("records[0].ID = %s, want dep-2", got.ID)
	}
	if got.Status != deploy.StatusFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if got.Error != "Error: no org found" {
		t.Errorf("Error = %q", got.Error)
	}
	if !got.CreatedAt.Equal(baseTime.Add(time.Minute)) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, baseTime.Add(time.Minute))
	}

	got = records[1]
	if got.ID != "dep-1" {
		t.Errorf("records[1].ID = %s, want dep-1", got.ID)
	}
	if got.ObjectName != "Invoice" || got.APIName != "Invoice__c" {
		t.Errorf("names = %s/%s, want Invoice/Invoice__c", got.ObjectName, got.APIName)
	}
	if got.FieldCount != 3 {
		t.Errorf("FieldCount = %d, want 3", got.FieldCount)
	}
	if got.Output != "Deploy Succeeded." {
		t.Errorf("Output = %q", got.Output)
	}
	if got.DurationMs != 4200 {
		t.Errorf("DurationMs = %d, want 4200", got.DurationMs)
	}
}

func TestDeploymentStore_ListLimit(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDeploymentStore(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r := testRecord("dep-"+string(rune('a'+i)), baseTime.Add(time.Duration(i)*time.Second))
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	records, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len = %d, want 3", len(records))
	}
}

func TestDeploymentStore_ListDefaultLimit(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDeploymentStore(db)
	ctx := context.Background()

	if err := store.Record(ctx, testRecord("dep-1", baseTime)); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list with zero limit: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len = %d, want 1", len(records))
	}
}

func TestDeploymentStore_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDeploymentStore(db)

	records, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestDeploymentStore_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewDeploymentStore(db)
	ctx := context.Background()

	if err := store.Record(ctx, testRecord("dep-1", baseTime)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, testRecord("dep-1", baseTime)); err == nil {
		t.Fatal("expected error for duplicate ID")
	}
}

func TestMigration_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}
