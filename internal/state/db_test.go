package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgr01/openhab-js/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db
}

func sampleRecord(uid, name string) RuleRecord {
	return RuleRecord{
		UID:         uid,
		Name:        name,
		Description: "item Light changed to ON",
		Tags:        []string{"lighting"},
		Triggers: []engine.Trigger{
			engine.ItemStateChangeTrigger("Light", "", "ON"),
			engine.SystemStartlevelTrigger(100),
		},
		Labels:     []string{"Light =>ON/Δ", "system:100"},
		SourcePath: "/rules/" + name + ".yaml",
		CompiledAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestOpen_CreatesDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "registry.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	for _, table := range []string{"rule_definitions", "schema_version"} {
		var name string
		err := db.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("%s table not created: %v", table, err)
		}
	}
}

func TestOpen_SchemaVersionWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		db.Close()
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 schema_version row, got %d", count)
	}
}

func TestSaveAndGetRule(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	rec := sampleRecord("uid-1", "porch")
	rec.Hold = &engine.Hold{Item: "Light", State: "ON", For: 5 * time.Minute}
	if err := db.SaveRule(rec); err != nil {
		t.Fatalf("SaveRule() error = %v", err)
	}

	got, err := db.GetRule("uid-1")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if got.Name != "porch" || got.Description != rec.Description {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(got.Triggers))
	}
	if got.Triggers[0].TypeUID != engine.TypeItemStateChange {
		t.Errorf("expected first trigger %s, got %s", engine.TypeItemStateChange, got.Triggers[0].TypeUID)
	}
	if got.Triggers[0].ID != rec.Triggers[0].ID {
		t.Errorf("trigger id not preserved")
	}
	// JSON numbers decode as float64
	if got.Triggers[1].Configuration["startlevel"] != float64(100) {
		t.Errorf("expected startlevel 100, got %v", got.Triggers[1].Configuration["startlevel"])
	}
	if got.Hold == nil || got.Hold.For != 5*time.Minute {
		t.Errorf("expected hold of 5m, got %+v", got.Hold)
	}
	if len(got.Labels) != 2 || got.Labels[1] != "system:100" {
		t.Errorf("unexpected labels: %v", got.Labels)
	}
	if !got.CompiledAt.Equal(rec.CompiledAt) {
		t.Errorf("compiled_at = %v, want %v", got.CompiledAt, rec.CompiledAt)
	}
}

func TestGetRule_ByName(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := db.SaveRule(sampleRecord("uid-1", "porch")); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetRule("porch")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if got.UID != "uid-1" {
		t.Errorf("expected uid-1, got %s", got.UID)
	}
}

func TestGetRule_NotFound(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	_, err := db.GetRule("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRule_Upserts(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	rec := sampleRecord("uid-1", "porch")
	if err := db.SaveRule(rec); err != nil {
		t.Fatal(err)
	}
	rec.Name = "porch-v2"
	rec.Tags = nil
	if err := db.SaveRule(rec); err != nil {
		t.Fatal(err)
	}

	rules, err := db.ListRules()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule after upsert, got %d", len(rules))
	}
	if rules[0].Name != "porch-v2" {
		t.Errorf("expected updated name, got %s", rules[0].Name)
	}
	if len(rules[0].Tags) != 0 {
		t.Errorf("expected no tags, got %v", rules[0].Tags)
	}
}

func TestListRules_OrderedByName(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	for _, rec := range []RuleRecord{sampleRecord("u2", "zeta"), sampleRecord("u1", "alpha")} {
		if err := db.SaveRule(rec); err != nil {
			t.Fatal(err)
		}
	}

	rules, err := db.ListRules()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 || rules[0].Name != "alpha" || rules[1].Name != "zeta" {
		t.Errorf("unexpected order: %+v", rules)
	}
}

func TestDeleteRule(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := db.SaveRule(sampleRecord("uid-1", "porch")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteRule("uid-1"); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}
	if err := db.DeleteRule("uid-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPruneExcept(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	for _, rec := range []RuleRecord{sampleRecord("a", "a"), sampleRecord("b", "b"), sampleRecord("c", "c")} {
		if err := db.SaveRule(rec); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := db.PruneExcept([]string{"b"})
	if err != nil {
		t.Fatalf("PruneExcept() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	rules, err := db.ListRules()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].UID != "b" {
		t.Errorf("unexpected remaining rules: %+v", rules)
	}
}
