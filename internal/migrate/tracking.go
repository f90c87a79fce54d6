package migrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// DefaultTrackingTable is where applied migrations are recorded unless
// configured otherwise.
const DefaultTrackingTable = "public.pgmt_migrations"

// SectionStatus is one section's lifecycle state in the tracking table.
type SectionStatus string

const (
	SectionPending   SectionStatus = "pending"
	SectionRunning   SectionStatus = "running"
	SectionCompleted SectionStatus = "completed"
	SectionFailed    SectionStatus = "failed"
)

// Tracker records migration and per-section progress in the tracking tables.
type Tracker struct {
	db    *sql.DB
	table string
}

// NewTracker creates a tracker writing to the named migrations table; the
// companion sections table derives its name from it (pgmt_migrations gives
// pgmt_migration_sections).
func NewTracker(db *sql.DB, table string) *Tracker {
	if table == "" {
		table = DefaultTrackingTable
	}
	return &Tracker{db: db, table: table}
}

func (t *Tracker) sectionsTable() string {
	base := t.table
	if n := len(base); n > 0 && base[n-1] == 's' {
		base = base[:n-1]
	}
	return base + "_sections"
}

// quoteQualified quotes a possibly schema-qualified table name.
func quoteQualified(name string) string {
	schema, rest := "public", name
	if idx := indexUnquotedDot(name); idx >= 0 {
		schema, rest = name[:idx], name[idx+1:]
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(rest)
}

func indexUnquotedDot(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// EnsureTables creates the tracking tables when absent.
func (t *Tracker) EnsureTables(ctx context.Context) error {
	migrations := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version bigint PRIMARY KEY,
    description text NOT NULL,
    checksum text NOT NULL,
    applied_at timestamptz NOT NULL DEFAULT now()
)`, quoteQualified(t.table))

	sections := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version bigint NOT NULL,
    section_name text NOT NULL,
    status text NOT NULL DEFAULT 'pending',
    attempts int NOT NULL DEFAULT 0,
    last_error text,
    PRIMARY KEY (version, section_name)
)`, quoteQualified(t.sectionsTable()))

	if _, err := t.db.ExecContext(ctx, migrations); err != nil {
		return fmt.Errorf("create tracking table: %w", err)
	}
	if _, err := t.db.ExecContext(ctx, sections); err != nil {
		return fmt.Errorf("create section tracking table: %w", err)
	}
	return nil
}

// AppliedVersions returns the versions already recorded, ascending.
func (t *Tracker) AppliedVersions(ctx context.Context) ([]int64, error) {
	rows, err := t.db.QueryContext(ctx,
		fmt.Sprintf("SELECT version FROM %s ORDER BY version", quoteQualified(t.table)))
	if err != nil {
		return nil, fmt.Errorf("read applied versions: %w", err)
	}
	defer rows.Close()

	var versions []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// RecordApplied inserts the migration row after every section completed.
func (t *Tracker) RecordApplied(ctx context.Context, file File, content string) error {
	_, err := t.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (version, description, checksum) VALUES ($1, $2, $3)", quoteQualified(t.table)),
		file.Version, file.Description, Checksum(content))
	if err != nil {
		return fmt.Errorf("record migration %d: %w", file.Version, err)
	}
	return nil
}

// SectionStatuses returns the recorded status per section of one version.
func (t *Tracker) SectionStatuses(ctx context.Context, version int64) (map[string]SectionStatus, error) {
	rows, err := t.db.QueryContext(ctx,
		fmt.Sprintf("SELECT section_name, status FROM %s WHERE version = $1", quoteQualified(t.sectionsTable())),
		version)
	if err != nil {
		return nil, fmt.Errorf("read section statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]SectionStatus)
	for rows.Next() {
		var name, status string
		if err := rows.Scan(&name, &status); err != nil {
			return nil, err
		}
		statuses[name] = SectionStatus(status)
	}
	return statuses, rows.Err()
}

// SetSectionStatus upserts one section's status, bumping the attempt counter
// on transitions into running.
func (t *Tracker) SetSectionStatus(ctx context.Context, version int64, section string, status SectionStatus, lastError string) error {
	bump := 0
	if status == SectionRunning {
		bump = 1
	}
	bare := t.sectionsTable()
	if idx := indexUnquotedDot(bare); idx >= 0 {
		bare = bare[idx+1:]
	}
	_, err := t.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (version, section_name, status, attempts, last_error)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
ON CONFLICT (version, section_name) DO UPDATE
SET status = EXCLUDED.status,
    attempts = %s.attempts + $4,
    last_error = EXCLUDED.last_error`,
		quoteQualified(t.sectionsTable()), pq.QuoteIdentifier(bare)),
		version, section, string(status), bump, lastError)
	if err != nil {
		return fmt.Errorf("update section %s of %d: %w", section, version, err)
	}
	return nil
}

// Checksum is the content hash stored with each applied migration.
func Checksum(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}
