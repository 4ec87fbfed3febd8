// internal/state/db.go
// Registry of compiled rule definitions.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgr01/openhab-js/internal/engine"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no rule matches the lookup
var ErrNotFound = errors.New("rule not found")

// RuleRecord is a compiled rule as stored in the registry.
type RuleRecord struct {
	UID         string
	Name        string
	Description string
	Tags        []string
	Triggers    []engine.Trigger
	Hold        *engine.Hold
	Labels      []string // compact trigger descriptions
	SourcePath  string
	CompiledAt  time.Time
}

// DB wraps the SQLite database connection for the rule registry.
type DB struct {
	db *sql.DB
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rule_definitions (
    uid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    tags TEXT NOT NULL,
    triggers TEXT NOT NULL,
    hold TEXT,
    labels TEXT NOT NULL,
    source_path TEXT,
    compiled_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rule_definitions_name ON rule_definitions(name);
CREATE INDEX IF NOT EXISTS idx_rule_definitions_source ON rule_definitions(source_path);
`

// Open opens or creates a registry database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			db.Close()
			return nil, fmt.Errorf("writing schema version: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveRule inserts or replaces a rule record keyed by UID.
func (d *DB) SaveRule(rec RuleRecord) error {
	tags, err := json.Marshal(nonNil(rec.Tags))
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	triggers, err := json.Marshal(rec.Triggers)
	if err != nil {
		return fmt.Errorf("encoding triggers: %w", err)
	}
	labels, err := json.Marshal(nonNil(rec.Labels))
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}
	var hold *string
	if rec.Hold != nil {
		b, err := json.Marshal(rec.Hold)
		if err != nil {
			return fmt.Errorf("encoding hold: %w", err)
		}
		s := string(b)
		hold = &s
	}
	if rec.CompiledAt.IsZero() {
		rec.CompiledAt = time.Now()
	}

	_, err = d.db.Exec(`
		INSERT INTO rule_definitions
		(uid, name, description, tags, triggers, hold, labels, source_path, compiled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tags = excluded.tags,
			triggers = excluded.triggers,
			hold = excluded.hold,
			labels = excluded.labels,
			source_path = excluded.source_path,
			compiled_at = excluded.compiled_at`,
		rec.UID, rec.Name, rec.Description, string(tags), string(triggers), hold,
		string(labels), rec.SourcePath, rec.CompiledAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving rule %s: %w", rec.UID, err)
	}
	return nil
}

const selectRule = "SELECT uid, name, description, tags, triggers, hold, labels, source_path, compiled_at FROM rule_definitions"

// GetRule looks a rule up by UID, falling back to its name.
func (d *DB) GetRule(key string) (*RuleRecord, error) {
	row := d.db.QueryRow(selectRule+" WHERE uid = ? OR name = ? ORDER BY uid = ? DESC LIMIT 1", key, key, key)
	rec, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting rule %s: %w", key, err)
	}
	return rec, nil
}

// ListRules returns all rules ordered by name.
func (d *DB) ListRules() ([]RuleRecord, error) {
	rows, err := d.db.Query(selectRule + " ORDER BY name, uid")
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var records []RuleRecord
	for rows.Next() {
		rec, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DeleteRule removes a rule by UID.
func (d *DB) DeleteRule(uid string) error {
	res, err := d.db.Exec("DELETE FROM rule_definitions WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("deleting rule %s: %w", uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneExcept removes every rule whose UID is not in keep and returns how many were removed.
func (d *DB) PruneExcept(keep []string) (int64, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, uid := range keep {
		keepSet[uid] = true
	}

	rows, err := d.db.Query("SELECT uid FROM rule_definitions")
	if err != nil {
		return 0, fmt.Errorf("listing rule uids: %w", err)
	}
	var stale []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning rule uid: %w", err)
		}
		if !keepSet[uid] {
			stale = append(stale, uid)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var removed int64
	for _, uid := range stale {
		if err := d.DeleteRule(uid); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(s scanner) (*RuleRecord, error) {
	var (
		rec                     RuleRecord
		description, sourcePath sql.NullString
		tags, triggers, labels  string
		hold                    sql.NullString
	)
	if err := s.Scan(&rec.UID, &rec.Name, &description, &tags, &triggers, &hold, &labels, &sourcePath, &rec.CompiledAt); err != nil {
		return nil, err
	}
	rec.Description = description.String
	rec.SourcePath = sourcePath.String

	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(triggers), &rec.Triggers); err != nil {
		return nil, fmt.Errorf("decoding triggers: %w", err)
	}
	if err := json.Unmarshal([]byte(labels), &rec.Labels); err != nil {
		return nil, fmt.Errorf("decoding labels: %w", err)
	}
	if hold.Valid {
		rec.Hold = &engine.Hold{}
		if err := json.Unmarshal([]byte(hold.String), rec.Hold); err != nil {
			return nil, fmt.Errorf("decoding hold: %w", err)
		}
	}
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewRecord builds a registry record for a compiled rule.
func NewRecord(rule *engine.Rule, sourcePath string) RuleRecord {
	return RuleRecord{
		UID:         rule.UID,
		Name:        rule.Name,
		Description: rule.Description,
		Tags:        rule.Tags,
		Triggers:    rule.Triggers,
		Hold:        rule.Hold,
		Labels:      rule.Labels,
		SourcePath:  sourcePath,
		CompiledAt:  time.Now(),
	}
}
