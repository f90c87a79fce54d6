package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cloudflare/backoff"
)

// Executor applies migration files section by section, recording per-section
// progress so a failed migration resumes where it stopped.
type Executor struct {
	db      *sql.DB
	tracker *Tracker
}

// NewExecutor creates an executor over an open connection pool.
func NewExecutor(db *sql.DB, tracker *Tracker) *Executor {
	return &Executor{db: db, tracker: tracker}
}

// Apply runs one migration file. Sections that already completed are
// skipped; a failing section is retried per its retry settings, then marked
// failed.
func (e *Executor) Apply(ctx context.Context, file File, content string) error {
	sections, err := ParseSections(content)
	if err != nil {
		return fmt.Errorf("%s: %w", file.Name, err)
	}
	if err := ValidateSections(sections); err != nil {
		return fmt.Errorf("%s: %w", file.Name, err)
	}

	statuses, err := e.tracker.SectionStatuses(ctx, file.Version)
	if err != nil {
		return err
	}

	for _, section := range sections {
		if statuses[section.Name] == SectionCompleted {
			continue
		}
		if err := e.runSection(ctx, file.Version, section); err != nil {
			return fmt.Errorf("%s section %q: %w", file.Name, section.Name, err)
		}
	}

	return e.tracker.RecordApplied(ctx, file, content)
}

func (e *Executor) runSection(ctx context.Context, version int64, section Section) error {
	attempts := section.RetryAttempts + 1
	var delay *backoff.Backoff
	if section.RetryAttempts > 0 {
		maxDelay := section.RetryDelay * time.Duration(section.RetryAttempts)
		if maxDelay <= 0 {
			maxDelay = time.Minute
		}
		delay = backoff.New(maxDelay, section.RetryDelay)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := e.tracker.SetSectionStatus(ctx, version, section.Name, SectionRunning, ""); err != nil {
			return err
		}
		lastErr = e.execOnce(ctx, section)
		if lastErr == nil {
			return e.tracker.SetSectionStatus(ctx, version, section.Name, SectionCompleted, "")
		}
		if markErr := e.tracker.SetSectionStatus(ctx, version, section.Name, SectionFailed, lastErr.Error()); markErr != nil {
			return errors.Join(lastErr, markErr)
		}
		if attempt < attempts-1 && delay != nil {
			select {
			case <-time.After(delay.Duration()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (e *Executor) execOnce(ctx context.Context, section Section) error {
	if section.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, section.Timeout)
		defer cancel()
	}

	switch section.Mode {
	case ModeNonTransactional:
		// Concurrent index builds refuse to run inside a transaction, so the
		// section executes one statement at a time on the bare connection.
		stmts, err := SplitStatements(section.SQL)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := e.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute %q: %w", truncateSQL(stmt), err)
			}
		}
		return nil
	default:
		tx, err := e.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, section.SQL); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}
}

func truncateSQL(sql string) string {
	const max = 80
	if len(sql) <= max {
		return sql
	}
	return sql[:max] + "..."
}
