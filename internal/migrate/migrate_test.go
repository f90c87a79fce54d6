package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilename(t *testing.T) {
	f, err := ParseFilename("V20240301120000__add_users_table.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(20240301120000), f.Version)
	assert.Equal(t, "add users table", f.Description)

	_, err = ParseFilename("20240301__missing_prefix.sql")
	assert.Error(t, err)
	_, err = ParseFilename("V2024__bad name.sql")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "V20240301120000__add_email.sql", Filename(at, "Add Email!"))
	assert.Equal(t, "V20240301120000__baseline.sql", BaselineFilename(at))
}

func TestParseSectionsDefault(t *testing.T) {
	sections, err := ParseSections("ALTER TABLE users ADD COLUMN email text;\n")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, DefaultSectionName, sections[0].Name)
	assert.Equal(t, ModeTransactional, sections[0].Mode)
	assert.Equal(t, "ALTER TABLE users ADD COLUMN email text;", sections[0].SQL)
}

func TestParseSectionsDirectives(t *testing.T) {
	content := `-- pgmt:section name="add_email"
-- pgmt:  mode="transactional"
-- pgmt:  timeout="30s"
ALTER TABLE users ADD COLUMN email text;

-- pgmt:section name="create_index"
-- pgmt:  mode="non-transactional"
-- pgmt:  timeout="5m"
-- pgmt:  retry_attempts="3"
-- pgmt:  retry_delay="1s"
CREATE INDEX CONCURRENTLY users_email_idx ON users (email);
`
	sections, err := ParseSections(content)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	first := sections[0]
	assert.Equal(t, "add_email", first.Name)
	assert.Equal(t, ModeTransactional, first.Mode)
	assert.Equal(t, 30*time.Second, first.Timeout)
	assert.Equal(t, "ALTER TABLE users ADD COLUMN email text;", first.SQL)

	second := sections[1]
	assert.Equal(t, "create_index", second.Name)
	assert.Equal(t, ModeNonTransactional, second.Mode)
	assert.Equal(t, 5*time.Minute, second.Timeout)
	assert.Equal(t, 3, second.RetryAttempts)
	assert.Equal(t, time.Second, second.RetryDelay)
	assert.Equal(t, "CREATE INDEX CONCURRENTLY users_email_idx ON users (email);", second.SQL)

	require.NoError(t, ValidateSections(sections))
}

func TestParseSectionsRejectsLooseStatements(t *testing.T) {
	content := `SELECT 1;
-- pgmt:section name="s1"
SELECT 2;
`
	_, err := ParseSections(content)
	assert.Error(t, err)
}

func TestParseSectionsRejectsUnknownKey(t *testing.T) {
	content := `-- pgmt:section name="s1"
-- pgmt:  parallelism="4"
SELECT 1;
`
	_, err := ParseSections(content)
	assert.ErrorContains(t, err, "unknown directive key")
}

func TestValidateSectionsDuplicates(t *testing.T) {
	err := ValidateSections([]Section{
		{Name: "a", Mode: ModeTransactional},
		{Name: "a", Mode: ModeTransactional},
	})
	assert.ErrorContains(t, err, "duplicate section name")
}

func TestFormatSectionsRoundTrip(t *testing.T) {
	in := []Section{
		{Name: "ddl", Mode: ModeTransactional, Timeout: 30 * time.Second, SQL: "SELECT 1;"},
		{Name: "index", Mode: ModeNonTransactional, RetryAttempts: 2, RetryDelay: time.Second, SQL: "SELECT 2;"},
	}
	out, err := ParseSections(FormatSections(in))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[0].Timeout, out[0].Timeout)
	assert.Equal(t, in[1].Mode, out[1].Mode)
	assert.Equal(t, in[1].RetryAttempts, out[1].RetryAttempts)
	assert.Equal(t, in[1].RetryDelay, out[1].RetryDelay)
	assert.Equal(t, "SELECT 2;", out[1].SQL)
}

func TestSplitStatements(t *testing.T) {
	stmts, err := SplitStatements(`CREATE TABLE t (id int);
CREATE FUNCTION f() RETURNS text LANGUAGE sql AS $$ SELECT 'a;b' $$;
DROP TABLE t;`)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "'a;b'")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "add_users_table", Slugify("Add users  table"))
	assert.Equal(t, "v2_rollout", Slugify("  v2: rollout!! "))
}
