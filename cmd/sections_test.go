package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmt/pgmt/internal/diff"
	"github.com/pgmt/pgmt/internal/migrate"
)

func TestBuildSections(t *testing.T) {
	stmts := []diff.RenderedStatement{
		{SQL: `CREATE TABLE "public"."users" ();`, Safety: diff.Safe},
		{SQL: `DROP TABLE "public"."legacy";`, Safety: diff.Destructive},
		{SQL: `CREATE INDEX CONCURRENTLY "idx" ON "public"."users" ("id");`, Safety: diff.NonTransactional},
	}

	sections := buildSections(stmts)
	require.Len(t, sections, 2)

	assert.Equal(t, "schema", sections[0].Name)
	assert.Equal(t, migrate.ModeTransactional, sections[0].Mode)
	assert.Contains(t, sections[0].SQL, migrate.DestructiveMarker)
	assert.Contains(t, sections[0].SQL, `DROP TABLE "public"."legacy";`)

	assert.Equal(t, "concurrent", sections[1].Name)
	assert.Equal(t, migrate.ModeNonTransactional, sections[1].Mode)
	assert.Contains(t, sections[1].SQL, "CONCURRENTLY")

	// The formatted file round-trips through the section parser and keeps
	// the destructive marker visible to the apply gate.
	content := migrate.FormatSections(sections)
	parsed, err := migrate.ParseSections(content)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.True(t, migrate.ContainsDestructive(content))
}

func TestBuildSectionsTransactionalOnly(t *testing.T) {
	sections := buildSections([]diff.RenderedStatement{
		{SQL: "SELECT 1;", Safety: diff.Safe},
	})
	require.Len(t, sections, 1)
	assert.Equal(t, "schema", sections[0].Name)
}
