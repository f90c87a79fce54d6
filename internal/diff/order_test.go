package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmt/pgmt/internal/catalog"
)

func TestOrderReportsCycles(t *testing.T) {
	// Two views declared as depending on each other cannot be ordered.
	a := &catalog.View{Schema: "public", Name: "a", Definition: " SELECT 1", Deps: []catalog.ObjectID{catalog.ViewID("public", "b")}}
	b := &catalog.View{Schema: "public", Name: "b", Definition: " SELECT 1", Deps: []catalog.ObjectID{catalog.ViewID("public", "a")}}

	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Views = append(c.Views, a, b)
	})
	old := fixture(func(c *catalog.Catalog) {})

	_, err := Pipeline(old, new, Options{})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []catalog.ObjectID{
		catalog.ViewID("public", "a"),
		catalog.ViewID("public", "b"),
	}, cycleErr.Members)
}

func TestSerialCycleBrokenByPhases(t *testing.T) {
	// users depends on its sequence for the default; the sequence depends on
	// users for its lifetime. Creation must still order sequence first.
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
		c.Sequences = append(c.Sequences, &catalog.Sequence{
			Schema: "public", Name: "users_id_seq",
			DataType: "integer", Start: 1, Increment: 1, Cache: 1,
			OwnedByTable: "users", OwnedByColumn: "id",
			Deps: []catalog.ObjectID{catalog.TableID("public", "users")},
		})
	})
	// The table's id column references the sequence.
	new.Tables[0].Columns[0].Deps = []catalog.ObjectID{catalog.SequenceID("public", "users_id_seq")}
	new.Finalize()

	empty := fixture(func(c *catalog.Catalog) {})

	steps, err := Pipeline(empty, new, Options{})
	require.NoError(t, err)

	var kinds []catalog.Kind
	for _, s := range steps {
		kinds = append(kinds, s.Object().Kind)
	}
	require.Equal(t, []catalog.Kind{
		catalog.KindSchema,
		catalog.KindSequence, // CREATE SEQUENCE
		catalog.KindTable,
		catalog.KindSequence, // ALTER SEQUENCE ... OWNED BY
	}, kinds)
	assert.Equal(t, OpSetOwnership, steps[3].Operation())

	// Dropping the pair must not abort either.
	steps, err = Pipeline(new, empty, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, catalog.KindTable, steps[0].Object().Kind)
	assert.Equal(t, catalog.KindSequence, steps[1].Object().Kind)
	assert.Equal(t, catalog.KindSchema, steps[2].Object().Kind)
}

func TestRevokePrecedesObjectDrop(t *testing.T) {
	old := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
		c.Grants = append(c.Grants, &catalog.Grant{
			Object:      catalog.TableID("public", "users"),
			Grantee:     "reporting",
			ObjectOwner: "app_owner",
			Privileges:  []string{"SELECT"},
		})
	})
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
	})

	steps, err := Pipeline(old, new, Options{})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, catalog.KindGrant, steps[0].Object().Kind)
	assert.Equal(t, catalog.KindTable, steps[1].Object().Kind)
}

func TestExternalEdgesOrderFunctionAfterTable(t *testing.T) {
	// A plpgsql body reference is invisible to pg_depend; the file-declared
	// edge must still order the function after the table it reads.
	fn := &catalog.Function{
		Schema: "public", Name: "count_users", Args: "",
		Language: "plpgsql", Returns: "bigint", Volatility: "VOLATILE",
		Definition: "CREATE OR REPLACE FUNCTION public.count_users()\n RETURNS bigint\n LANGUAGE plpgsql\nAS $function$begin return (select count(*) from users); end$function$",
	}
	new := fixture(func(c *catalog.Catalog) {
		c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
		c.Tables = append(c.Tables, usersTable())
		c.Functions = append(c.Functions, fn)
	})
	empty := fixture(func(c *catalog.Catalog) {})

	external := map[catalog.ObjectID][]catalog.ObjectID{
		fn.ID(): {catalog.TableID("public", "users")},
	}

	steps, err := Pipeline(empty, new, Options{ExternalEdges: external})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, catalog.TableID("public", "users"), steps[1].Object())
	assert.Equal(t, fn.ID(), steps[2].Object())

	// Without the edge, phase ranking puts the function first.
	steps, err = Pipeline(empty, new, Options{})
	require.NoError(t, err)
	assert.Equal(t, fn.ID(), steps[1].Object())
}

func TestCascadeIdempotent(t *testing.T) {
	makeCat := func(countType string) *catalog.Catalog {
		return fixture(func(c *catalog.Catalog) {
			c.Schemas = append(c.Schemas, &catalog.Schema{Name: "public"})
			c.Types = append(c.Types, &catalog.Type{
				Schema: "public", Name: "state",
				Kind:       catalog.TypeKindEnum,
				EnumValues: []string{countType, "b"},
			})
			c.Tables = append(c.Tables, &catalog.Table{
				Schema: "public", Name: "t",
				Columns: []catalog.Column{{
					Name: "s", DataType: "state",
					Deps: []catalog.ObjectID{catalog.TypeID("public", "state")},
				}},
			})
		})
	}

	old := makeCat("a")
	new := makeCat("z") // not an append, forces type drop+create

	steps, err := All(old, new, Options{})
	require.NoError(t, err)

	once := Cascade(steps, old, new)
	twice := Cascade(once, old, new)
	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Object(), twice[i].Object())
		assert.Equal(t, once[i].Operation(), twice[i].Operation())
	}

	// The dependent table was dropped and recreated around the type change.
	var dropTable, createTable bool
	for _, s := range once {
		if s.Object().Kind == catalog.KindTable {
			switch s.Operation() {
			case OpDrop:
				dropTable = true
				assert.True(t, IsSynthetic(s))
			case OpCreate:
				createTable = true
				assert.True(t, IsSynthetic(s))
			}
		}
	}
	assert.True(t, dropTable)
	assert.True(t, createTable)
}
