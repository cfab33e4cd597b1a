// Package store persists the rule catalog and user settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned when a rule id does not exist.
var ErrNotFound = errors.New("not found")

// seedVersion is recorded in meta once the default catalog has been written.
// Bumping it does not reseed; the row only records that seeding happened.
const seedVersion = "1"

const schema = `
CREATE TABLE IF NOT EXISTS rules (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	risk               TEXT NOT NULL DEFAULT 'low',
	default_checked    INTEGER NOT NULL DEFAULT 0,
	requires_admin     INTEGER NOT NULL DEFAULT 0,
	rule_type          TEXT NOT NULL,
	scope              TEXT NOT NULL DEFAULT '',
	path               TEXT NOT NULL DEFAULT '',
	pattern            TEXT NOT NULL DEFAULT '',
	size_threshold_mb  INTEGER,
	age_threshold_days INTEGER,
	action             TEXT NOT NULL,
	tool_cmd           TEXT NOT NULL DEFAULT '',
	enabled            INTEGER NOT NULL DEFAULT 1,
	sort_order         INTEGER NOT NULL DEFAULT 0,
	notes              TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const ruleColumns = `id, title, description, category, risk, default_checked, requires_admin,
	rule_type, scope, path, pattern, size_threshold_mb, age_threshold_days, action,
	tool_cmd, enabled, sort_order, notes`

// Store is a SQLite-backed rule catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path, applies the schema
// and writes seed as the initial catalog when the database has never been
// seeded.
func Open(ctx context.Context, path string, seed []rules.Rule) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx, seed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(ctx context.Context, seed []rules.Rule) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'seed_version'`).Scan(&v)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to read seed version: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertRulesTx(ctx, tx, seed); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('seed_version', ?)`, seedVersion); err != nil {
		return fmt.Errorf("failed to record seed version: %w", err)
	}
	return tx.Commit()
}

// ─── Rules ──────────────────────────────────────────────────────────────────

// ListRules returns the enabled rules in display order.
func (s *Store) ListRules(ctx context.Context) ([]rules.Rule, error) {
	return s.queryRules(ctx, `SELECT `+ruleColumns+` FROM rules WHERE enabled = 1
		ORDER BY sort_order, category, title`)
}

// AllRules returns every rule, enabled or not, in display order.
func (s *Store) AllRules(ctx context.Context) ([]rules.Rule, error) {
	return s.queryRules(ctx, `SELECT `+ruleColumns+` FROM rules
		ORDER BY sort_order, category, title`)
}

// UpsertRules inserts rs, replacing any rule with the same id. Every rule is
// validated before anything is written.
func (s *Store) UpsertRules(ctx context.Context, rs []rules.Rule) error {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertRulesTx(ctx, tx, rs); err != nil {
		return err
	}
	return tx.Commit()
}

// SetEnabled toggles a rule. It returns ErrNotFound for an unknown id.
func (s *Store) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rules SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

func upsertRulesTx(ctx context.Context, tx *sql.Tx, rs []rules.Rule) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rs {
		_, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Description, r.Category, string(r.Risk),
			r.DefaultChecked, r.RequiresAdmin, string(r.Type), r.Scope,
			r.Path, r.Pattern, nullInt(r.SizeThresholdMB), nullInt(r.AgeThresholdDays),
			string(r.Action), r.ToolCmd, r.Enabled, r.SortOrder, r.Notes)
		if err != nil {
			return fmt.Errorf("failed to save rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *Store) queryRules(ctx context.Context, query string) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []rules.Rule
	for rows.Next() {
		var (
			r         rules.Rule
			risk      string
			typ       string
			action    string
			size, age sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Category, &risk,
			&r.DefaultChecked, &r.RequiresAdmin, &typ, &r.Scope, &r.Path, &r.Pattern,
			&size, &age, &action, &r.ToolCmd, &r.Enabled, &r.SortOrder, &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.Risk = rules.Risk(risk)
		r.Type = rules.Type(typ)
		r.Action = rules.Action(action)
		if size.Valid {
			r.SizeThresholdMB = rules.Int64(size.Int64)
		}
		if age.Valid {
			r.AgeThresholdDays = rules.Int64(age.Int64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return out, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// ─── Settings ───────────────────────────────────────────────────────────────

// GetSetting returns the stored value for key and whether it was present.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return v, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// Settings returns every stored setting.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// IntSetting reads key as an integer, returning def when it is absent or
// not a number.
func (s *Store) IntSetting(ctx context.Context, key string, def int64) (int64, error) {
	v, ok, err := s.GetSetting(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, nil
	}
	return n, nil
}
