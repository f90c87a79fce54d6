package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmt/pgmt/internal/catalog"
)

// fixture assembles a catalog from entities and finalizes it.
func fixture(build func(c *catalog.Catalog)) *catalog.Catalog {
	c := catalog.New()
	c.ServerVersion = 160000
	build(c)
	c.Finalize()
	return c
}

func usersTable() *catalog.Table {
	return &catalog.Table{
		Schema: "public",
		Name:   "users",
		Columns: []catalog.Column{
			{Name: "id", DataType: "integer", NotNull: true, Default: "nextval('users_id_seq'::regclass)"},
			{Name: "name", DataType: "text", NotNull: true},
		},
		PrimaryKey: &catalog.PrimaryKey{Name: "users_pkey", Columns: []string{"id"}},
	}
}

func renderSQL(t *testing.T, steps []Step) []string {
	t.Helper()
	var out []string
	for _, stmt := range Render(steps) {
		out = append(out, stmt.SQL)
	}
	return out
}

func TestDiffIdentity(t *testing.T) {
	c := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
		c.Views = append(c.Views, &catalog.View{
			Schema: "public", Name: "user_names",
			Definition: " SELECT name\n   FROM users",
			Columns:    []catalog.ViewColumn{{Name: "name", DataType: "text"}},
			Deps:       []catalog.ObjectID{catalog.TableID("public", "users")},
		})
	})

	steps, err := Pipeline(c, c, Options{})
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestAddColumn(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
	})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		tbl := usersTable()
		tbl.Columns = append(tbl.Columns, catalog.Column{Name: "email", DataType: "character varying(255)"})
		c.Tables = append(c.Tables, tbl)
	})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 1)

	stmts := steps[0].Render()
	require.Len(t, stmts, 1)
	assert.Equal(t, `ALTER TABLE "public"."users" ADD COLUMN "email" character varying(255);`, stmts[0].SQL)
	assert.Equal(t, Safe, stmts[0].Safety)
}

func TestAlterColumnTypeCascadesDependentView(t *testing.T) {
	makeCat := func(countType string) *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
			c.Tables = append(c.Tables, &catalog.Table{
				Schema: "public", Name: "users",
				Columns: []catalog.Column{
					{Name: "id", DataType: "integer", NotNull: true},
					{Name: "count", DataType: countType},
				},
			})
			c.Views = append(c.Views, &catalog.View{
				Schema: "public", Name: "user_stats",
				Definition: " SELECT id,\n    count\n   FROM users\n  WHERE count > 0",
				Columns: []catalog.ViewColumn{
					{Name: "id", DataType: "integer"},
					{Name: "count", DataType: countType},
				},
				Deps: []catalog.ObjectID{catalog.TableID("public", "users")},
			})
		})
	}

	steps, err := Pipeline(makeCat("smallint"), makeCat("bigint"), Options{})
	require.NoError(t, err)

	sqls := renderSQL(t, steps)
	require.Len(t, sqls, 3)
	assert.Equal(t, `DROP VIEW "public"."user_stats";`, sqls[0])
	assert.Equal(t, `ALTER TABLE "public"."users" ALTER COLUMN "count" TYPE bigint;`, sqls[1])
	assert.True(t, strings.HasPrefix(sqls[2], `CREATE VIEW "public"."user_stats" AS`), sqls[2])

	assert.Equal(t, OpDrop, steps[0].Operation())
	assert.Equal(t, OpAlter, steps[1].Operation())
	assert.Equal(t, OpCreate, steps[2].Operation())
}

func TestAddEnumValue(t *testing.T) {
	makeCat := func(values ...string) *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "app"})
			c.Types = append(c.Types, &catalog.Type{
				Schema: "app", Name: "priority",
				Kind:       catalog.TypeKindEnum,
				EnumValues: values,
			})
		})
	}

	old := makeCat("low", "high")
	new := makeCat("low", "medium", "high")

	// An unknown server version renders conservatively outside transactions.
	old.ServerVersion = 0

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 1)

	stmts := steps[0].Render()
	require.Len(t, stmts, 1)
	assert.Equal(t, `ALTER TYPE "app"."priority" ADD VALUE 'medium' AFTER 'low';`, stmts[0].SQL)
	assert.Equal(t, NonTransactional, stmts[0].Safety)
}

func TestAddEnumValueTransactionalOnModernServer(t *testing.T) {
	d := typeDiffer{serverVersion: 160000}
	steps := d.diff(
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"low", "high"}},
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"low", "medium", "high"}},
	)
	require.Len(t, steps, 1)
	assert.Equal(t, Safe, steps[0].Render()[0].Safety)
}

func TestEnumRemovalForcesDropCreate(t *testing.T) {
	d := typeDiffer{}
	steps := d.diff(
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"low", "medium", "high"}},
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"low", "high"}},
	)
	require.Len(t, steps, 2)
	assert.Equal(t, OpDrop, steps[0].Operation())
	assert.Equal(t, OpCreate, steps[1].Operation())
}

func TestEnumHeadInsertionUsesBefore(t *testing.T) {
	d := typeDiffer{serverVersion: 160000}
	steps := d.diff(
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"low"}},
		&catalog.Type{Schema: "app", Name: "priority", Kind: catalog.TypeKindEnum, EnumValues: []string{"urgent", "low"}},
	)
	require.Len(t, steps, 1)
	assert.Equal(t, `ALTER TYPE "app"."priority" ADD VALUE 'urgent' BEFORE 'low';`, steps[0].Render()[0].SQL)
}

func TestExtensionPrecedesConsumer(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Extensions = append(c.Extensions, &catalog.Extension{Name: "citext", Schema: "public"})
		c.Tables = append(c.Tables, &catalog.Table{
			Schema: "public", Name: "users",
			Columns: []catalog.Column{{Name: "email", DataType: "citext"}},
			Deps:    []catalog.ObjectID{catalog.ExtensionID("citext")},
		})
	})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, catalog.SchemaID("public"), steps[0].Object())
	assert.Equal(t, catalog.ExtensionID("citext"), steps[1].Object())
	assert.Equal(t, catalog.TableID("public", "users"), steps[2].Object())

	// No Type step exists for citext: the dependency was rewritten to the
	// extension.
	for _, s := range steps {
		assert.NotEqual(t, catalog.KindType, s.Object().Kind)
	}
}

func TestOverloadedFunctionReplaceAndCreate(t *testing.T) {
	fnInt := func(body string) *catalog.Function {
		return &catalog.Function{
			Schema: "public", Name: "format", Args: "integer",
			Language: "sql", Returns: "text", Volatility: "IMMUTABLE",
			Definition: "CREATE OR REPLACE FUNCTION public.format(v integer)\n RETURNS text\n LANGUAGE sql\n IMMUTABLE\nAS $function$" + body + "$function$",
		}
	}
	fnText := &catalog.Function{
		Schema: "public", Name: "format", Args: "text, text",
		Language: "sql", Returns: "text", Volatility: "IMMUTABLE",
		Definition: "CREATE OR REPLACE FUNCTION public.format(v text, p text)\n RETURNS text\n LANGUAGE sql\n IMMUTABLE\nAS $function$select v || p$function$",
	}

	old := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Functions = append(c.Functions, fnInt("select v::text"))
	})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Functions = append(c.Functions, fnInt("select 'v=' || v::text"), fnText)
	})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	for _, s := range steps {
		assert.NotEqual(t, OpDrop, s.Operation())
	}
	ops := map[string]Operation{}
	for _, s := range steps {
		ops[s.Object().Args] = s.Operation()
	}
	assert.Equal(t, OpReplace, ops["integer"])
	assert.Equal(t, OpCreate, ops["text, text"])
}

func TestSerialOwnerGrantsProduceNoDrift(t *testing.T) {
	makeCat := func() *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
			c.Tables = append(c.Tables, usersTable())
			c.Sequences = append(c.Sequences, &catalog.Sequence{
				Schema: "public", Name: "users_id_seq",
				DataType: "integer", Start: 1, Increment: 1, Cache: 1,
				OwnedByTable: "users", OwnedByColumn: "id",
			})
			// PostgreSQL's default grants on the owned sequence: the owner
			// holds the full set implicitly.
			c.Grants = append(c.Grants, &catalog.Grant{
				Object:      catalog.SequenceID("public", "users_id_seq"),
				Grantee:     "app_owner",
				ObjectOwner: "app_owner",
				Privileges:  []string{"SELECT", "UPDATE", "USAGE"},
			})
		})
	}

	steps, err := Pipeline(makeCat(), makeCat(), Options{})
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestEmptyToNonEmptyStartsWithSchema(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "app"})
		c.Sequences = append(c.Sequences, &catalog.Sequence{Schema: "app", Name: "ids", DataType: "bigint", Start: 1, Increment: 1, Cache: 1})
		c.Tables = append(c.Tables, &catalog.Table{
			Schema: "app", Name: "items",
			Columns: []catalog.Column{{Name: "id", DataType: "bigint", NotNull: true}},
		})
		c.Views = append(c.Views, &catalog.View{
			Schema: "app", Name: "item_ids",
			Definition: " SELECT id\n   FROM app.items",
			Columns:    []catalog.ViewColumn{{Name: "id", DataType: "bigint"}},
			Deps:       []catalog.ObjectID{catalog.TableID("app", "items")},
		})
	})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.Equal(t, catalog.KindSchema, steps[0].Object().Kind)

	// Dependencies precede dependents throughout.
	pos := make(map[catalog.ObjectID]int)
	for i, s := range steps {
		pos[s.Object()] = i
	}
	assert.Less(t, pos[catalog.TableID("app", "items")], pos[catalog.ViewID("app", "item_ids")])
}

func TestNonEmptyToEmptyDropsSchemasLast(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "app"})
		c.Tables = append(c.Tables, &catalog.Table{
			Schema: "app", Name: "items",
			Columns: []catalog.Column{{Name: "id", DataType: "bigint", NotNull: true}},
		})
		c.Views = append(c.Views, &catalog.View{
			Schema: "app", Name: "item_ids",
			Definition: " SELECT id\n   FROM app.items",
			Columns:    []catalog.ViewColumn{{Name: "id", DataType: "bigint"}},
			Deps:       []catalog.ObjectID{catalog.TableID("app", "items")},
		})
	})
	new := fixture(func(c *catalog.Catalog) {})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, catalog.ViewID("app", "item_ids"), steps[0].Object())
	assert.Equal(t, catalog.TableID("app", "items"), steps[1].Object())
	assert.Equal(t, catalog.SchemaID("app"), steps[2].Object())
	for _, s := range steps {
		assert.Equal(t, OpDrop, s.Operation())
	}
}

func TestColumnOrderPolicy(t *testing.T) {
	makeCat := func(first, second string) *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
			c.Tables = append(c.Tables, &catalog.Table{
				Schema: "public", Name: "t",
				Columns: []catalog.Column{
					{Name: first, DataType: "text"},
					{Name: second, DataType: "text"},
				},
			})
		})
	}

	old := makeCat("a", "b")
	new := makeCat("b", "a")

	_, err := All(old, new, Options{ColumnOrder: ColumnOrderStrict})
	var orderErr *ColumnOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, catalog.TableID("public", "t"), orderErr.Table)

	steps, err := All(old, new, Options{ColumnOrder: ColumnOrderWarn})
	require.NoError(t, err)
	assert.Empty(t, steps)

	steps, err = All(old, new, Options{ColumnOrder: ColumnOrderRelaxed})
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestDisallowDestructive(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
	})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
	})

	_, err := All(old, new, Options{DisallowDestructive: true})
	var replaceErr *IncompatibleReplaceError
	require.ErrorAs(t, err, &replaceErr)
	assert.Equal(t, catalog.TableID("public", "users"), replaceErr.ID)
}

func TestQuotedIdentifiers(t *testing.T) {
	tbl := &catalog.Table{
		Schema:  "public",
		Name:    "user",
		Columns: []catalog.Column{{Name: "order", DataType: "integer"}},
	}
	steps, err := tableDiffer{}.diff(nil, tbl)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	sql := steps[0].Render()[0].SQL
	assert.Contains(t, sql, `"public"."user"`)
	assert.Contains(t, sql, `"order" integer`)
}

func TestSelfReferentialForeignKey(t *testing.T) {
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, &catalog.Table{
			Schema: "public", Name: "employees",
			Columns: []catalog.Column{
				{Name: "id", DataType: "integer", NotNull: true},
				{Name: "manager_id", DataType: "integer"},
			},
			PrimaryKey: &catalog.PrimaryKey{Name: "employees_pkey", Columns: []string{"id"}},
		})
		c.Constraints = append(c.Constraints, &catalog.Constraint{
			Schema: "public", Table: "employees", Name: "employees_manager_fk",
			Type:     catalog.ConstraintTypeForeignKey,
			Columns:  []string{"manager_id"},
			RefTable: "employees", RefColumns: []string{"id"},
			OnDelete: "SET NULL", OnUpdate: "NO ACTION",
		})
	})
	old := fixture(func(c *catalog.Catalog) {})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, catalog.KindTable, steps[1].Object().Kind)
	assert.Equal(t, catalog.KindConstraint, steps[2].Object().Kind)
}

func TestViewOptionFlipDoesNotReplace(t *testing.T) {
	makeView := func(invoker bool) *catalog.View {
		return &catalog.View{
			Schema: "public", Name: "v",
			Definition:      " SELECT 1 AS one",
			Columns:         []catalog.ViewColumn{{Name: "one", DataType: "integer"}},
			SecurityInvoker: invoker,
		}
	}
	steps := diffView(makeView(false), makeView(true))
	require.Len(t, steps, 1)
	assert.Equal(t, OpSetOption, steps[0].Operation())
	assert.Equal(t, `ALTER VIEW "public"."v" SET (security_invoker=true);`, steps[0].Render()[0].SQL)
}

func TestDeterministicOrdering(t *testing.T) {
	build := func() *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "app"}, &catalog.Schema{Name: "public"})
			for _, name := range []string{"c", "a", "b"} {
				c.Tables = append(c.Tables, &catalog.Table{
					Schema:  "app",
					Name:    name,
					Columns: []catalog.Column{{Name: "id", DataType: "integer"}},
				})
			}
		})
	}

	empty := fixture(func(c *catalog.Catalog) {})
	first, err := Pipeline(empty, build(), Options{})
	require.NoError(t, err)
	second, err := Pipeline(empty, build(), Options{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Object(), second[i].Object())
	}

	// Tables sort by identifier within the phase.
	var tables []string
	for _, s := range first {
		if s.Object().Kind == catalog.KindTable {
			tables = append(tables, s.Object().Name)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, tables)
}
