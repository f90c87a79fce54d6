package schemafile

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmt/pgmt/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"}, &catalog.Schema{Name: "app"})
	c.Sequences = append(c.Sequences, &catalog.Sequence{
		Schema: "public", Name: "users_id_seq",
		DataType: "integer", Start: 1, Increment: 1, Cache: 1,
		OwnedByTable: "users", OwnedByColumn: "id",
	})
	c.Tables = append(c.Tables, &catalog.Table{
		Schema: "public", Name: "users",
		Columns: []catalog.Column{
			{
				Name: "id", DataType: "integer", NotNull: true,
				Default: "nextval('users_id_seq'::regclass)",
				Deps:    []catalog.ObjectID{catalog.SequenceID("public", "users_id_seq")},
			},
			{Name: "email", DataType: "text", NotNull: true},
		},
		PrimaryKey: &catalog.PrimaryKey{Name: "users_pkey", Columns: []string{"id"}},
		Comment:    "registered users",
	})
	c.Indexes = append(c.Indexes, &catalog.Index{
		Schema: "public", Name: "users_email_idx", Table: "users",
		Method:  "btree",
		Columns: []catalog.IndexColumn{{Expression: "email"}},
	})
	c.Constraints = append(c.Constraints, &catalog.Constraint{
		Schema: "public", Table: "users", Name: "users_email_check",
		Type:        catalog.ConstraintTypeCheck,
		CheckClause: "email <> ''::text",
	})
	c.Views = append(c.Views, &catalog.View{
		Schema: "app", Name: "user_emails",
		Definition: " SELECT email\n   FROM users",
		Columns:    []catalog.ViewColumn{{Name: "email", DataType: "text"}},
		Deps:       []catalog.ObjectID{catalog.TableID("public", "users")},
	})
	c.Grants = append(c.Grants, &catalog.Grant{
		Object:      catalog.TableID("public", "users"),
		Grantee:     "reporting",
		ObjectOwner: "app_owner",
		Privileges:  []string{"SELECT"},
	})
	c.Finalize()
	return c
}

func TestWriteTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs)
	require.NoError(t, g.WriteTree("schema", testCatalog()))

	read := func(p string) string {
		data, err := afero.ReadFile(fs, "schema/"+p)
		require.NoError(t, err, p)
		return string(data)
	}

	users := read("tables/users.sql")
	assert.Contains(t, users, "-- require: schemas/public.sql")
	assert.Contains(t, users, "-- require: sequences/users_id_seq.sql")
	assert.Contains(t, users, `CREATE TABLE "public"."users"`)
	assert.Contains(t, users, `CONSTRAINT "users_pkey" PRIMARY KEY ("id")`)
	// Indexes and non-PK constraints share the table's file.
	assert.Contains(t, users, `CREATE INDEX "users_email_idx"`)
	assert.Contains(t, users, `ADD CONSTRAINT "users_email_check"`)
	assert.Contains(t, users, `COMMENT ON TABLE "public"."users" IS 'registered users';`)

	view := read("views/app.user_emails.sql")
	assert.Contains(t, view, "-- require: tables/users.sql")
	assert.Contains(t, view, `CREATE VIEW "app"."user_emails"`)

	grants := read("grants/users.sql")
	assert.Contains(t, grants, "-- require: tables/users.sql")
	assert.Contains(t, grants, `GRANT SELECT ON TABLE "public"."users" TO "reporting";`)

	// The emitted headers load back cleanly: no missing files, no cycles.
	reqs, err := LoadRequires(fs, "schema")
	require.NoError(t, err)
	assert.NotEmpty(t, reqs["tables/users.sql"])
}

func TestLoadRequiresMissingTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema/views/v.sql",
		[]byte("-- require: tables/missing.sql\nCREATE VIEW v AS SELECT 1;\n"), 0o644))

	_, err := LoadRequires(fs, "schema")
	var missing *MissingRequirementError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "views/v.sql", missing.From)
	assert.Equal(t, "tables/missing.sql", missing.To)
	assert.Equal(t, 1, missing.Line)
}

func TestLoadRequiresCycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema/a.sql", []byte("-- require: b\nSELECT 1;\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "schema/b.sql", []byte("-- require: c.sql\nSELECT 1;\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "schema/c.sql", []byte("-- require: a.sql\nSELECT 1;\n"), 0o644))

	_, err := LoadRequires(fs, "schema")
	var cycle *RequireCycleError
	require.ErrorAs(t, err, &cycle)
	require.Len(t, cycle.Cycle, 4)
	assert.Equal(t, cycle.Cycle[0], cycle.Cycle[len(cycle.Cycle)-1])
}

func TestLoadRequiresExtensionOptional(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema/tables/t.sql", []byte("CREATE TABLE t ();\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "schema/views/v.sql",
		[]byte("-- require: tables/t\n\nCREATE VIEW v AS SELECT 1;\n"), 0o644))

	reqs, err := LoadRequires(fs, "schema")
	require.NoError(t, err)
	require.Len(t, reqs["views/v.sql"], 1)
	assert.Equal(t, "tables/t.sql", reqs["views/v.sql"][0].Path)
}

func TestEdges(t *testing.T) {
	reqs := Requirements{
		"views/v.sql":  {{Path: "tables/t.sql", Line: 1}},
		"tables/t.sql": nil,
	}
	objects := map[string]catalog.ObjectID{
		"views/v.sql":  catalog.ViewID("public", "v"),
		"tables/t.sql": catalog.TableID("public", "t"),
	}
	edges := Edges(reqs, objects)
	require.Len(t, edges, 1)
	assert.Equal(t, []catalog.ObjectID{catalog.TableID("public", "t")}, edges[catalog.ViewID("public", "v")])
}

func TestRequireHeaderStopsAtFirstStatement(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := strings.Join([]string{
		"-- require: a.sql",
		"CREATE TABLE x ();",
		"-- require: ignored.sql",
	}, "\n")
	require.NoError(t, afero.WriteFile(fs, "schema/a.sql", []byte("SELECT 1;\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "schema/x.sql", []byte(content), 0o644))

	reqs, err := LoadRequires(fs, "schema")
	require.NoError(t, err)
	require.Len(t, reqs["x.sql"], 1)
	assert.Equal(t, "a.sql", reqs["x.sql"][0].Path)
}
