package db_test

import (
	"context"
	"testing"
	"testing/fstest"

	dbfs "github.com/garnizeh/quantumwork/db"
	"github.com/garnizeh/quantumwork/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 migration recorded, got %d", count)
	}

	for _, table := range []string{"candidates", "jobs", "matches"} {
		var name string
		if err := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name); err != nil {
			t.Fatalf("expected %s table exists: %v", table, err)
		}
	}
}

func TestMigrate_AppliesInOrder(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	fsys := fstest.MapFS{
		"migrations/0002_seed.sql":  {Data: []byte(`INSERT INTO t (v) VALUES ('seed');`)},
		"migrations/0001_table.sql": {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"migrations/README.md":      {Data: []byte(`ignored`)},
	}

	if err := db.Migrate(ctx, d, fsys); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	var v string
	if err := d.QueryRow(ctx, `SELECT v FROM t`).Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "seed" {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestMigrate_BrokenMigration(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	fsys := fstest.MapFS{
		"migrations/0001_bad.sql": {Data: []byte(`CREATE TABL nope;`)},
	}

	if err := db.Migrate(ctx, d, fsys); err == nil {
		t.Fatalf("expected error for broken migration")
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("broken migration must not be recorded, got %d", count)
	}
}

func TestMigrate_FailedFileRollsBack(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	fsys := fstest.MapFS{
		"migrations/0001_half.sql": {Data: []byte("CREATE TABLE half (id INTEGER);\nINSERT INTO missing VALUES (1);")},
	}

	if err := db.Migrate(ctx, d, fsys); err == nil {
		t.Fatalf("expected error for failing migration")
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'half'`).Scan(&count); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if count != 0 {
		t.Fatalf("table from a failed migration must be rolled back")
	}
}
