package inspect

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pgmt/pgmt/internal/catalog"
	"github.com/pgmt/pgmt/internal/diff"
)

// startPostgres spins up a disposable database for introspection tests.
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("pgmt_test"),
		postgres.WithUsername("pgmt"),
		postgres.WithPassword("pgmt"),
		testcontainers.WithWaitStrategy(wait.
			ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadCatalogIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := startPostgres(t)
	ctx := context.Background()

	ddl := []string{
		`CREATE SCHEMA app`,
		`CREATE TYPE app.priority AS ENUM ('low', 'high')`,
		`CREATE TABLE public.users (
			id serial PRIMARY KEY,
			email text NOT NULL,
			priority app.priority DEFAULT 'low'
		)`,
		`CREATE INDEX users_email_idx ON public.users (email)`,
		`CREATE VIEW public.user_emails AS SELECT id, email FROM public.users`,
		`CREATE FUNCTION public.user_count() RETURNS bigint LANGUAGE sql STABLE AS 'SELECT count(*) FROM users'`,
		`COMMENT ON TABLE public.users IS 'registered users'`,
	}
	for _, stmt := range ddl {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	cat, err := New(db).Load(ctx)
	require.NoError(t, err)

	// Tables, views, functions, and types landed with their identifiers.
	require.True(t, cat.Has(catalog.TableID("public", "users")))
	require.True(t, cat.Has(catalog.ViewID("public", "user_emails")))
	require.True(t, cat.Has(catalog.TypeID("app", "priority")))
	require.True(t, cat.Has(catalog.FunctionID("public", "user_count", "")))
	require.True(t, cat.Has(catalog.IndexID("public", "users_email_idx")))
	require.True(t, cat.Has(catalog.SequenceID("public", "users_id_seq")))

	users := cat.Find(catalog.TableID("public", "users")).(*catalog.Table)
	assert.Equal(t, "registered users", users.Comment)
	require.NotNil(t, users.PrimaryKey)
	assert.Equal(t, []string{"id"}, users.PrimaryKey.Columns)

	// The PK-backing index is excluded; the plain index stays.
	for _, idx := range cat.Indexes {
		assert.NotEqual(t, "users_pkey", idx.Name)
	}

	// The serial column wires table -> sequence; ownership wires
	// sequence -> table.
	assert.Contains(t, cat.ForwardDeps[catalog.TableID("public", "users")],
		catalog.SequenceID("public", "users_id_seq"))
	assert.Contains(t, cat.ForwardDeps[catalog.SequenceID("public", "users_id_seq")],
		catalog.TableID("public", "users"))

	// The view depends on its table.
	assert.Contains(t, cat.ForwardDeps[catalog.ViewID("public", "user_emails")],
		catalog.TableID("public", "users"))

	// Loading twice yields identical catalogs; a catalog diffed against
	// itself is empty.
	again, err := New(db).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(cat, again,
		cmpopts.IgnoreUnexported(catalog.Catalog{})))

	steps, err := diff.Pipeline(cat, again, diff.Options{})
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestLoadExtensionOwnedObjectsExcluded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := startPostgres(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "CREATE EXTENSION citext")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE TABLE public.users (email citext)")
	require.NoError(t, err)

	cat, err := New(db).Load(ctx)
	require.NoError(t, err)

	require.True(t, cat.Has(catalog.ExtensionID("citext")))
	// The citext type itself is extension-owned and absent; the table's
	// dependency points at the extension.
	assert.False(t, cat.Has(catalog.TypeID("public", "citext")))
	assert.Contains(t, cat.ForwardDeps[catalog.TableID("public", "users")],
		catalog.ExtensionID("citext"))
}
