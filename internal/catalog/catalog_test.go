package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectIDString(t *testing.T) {
	tests := []struct {
		id   ObjectID
		want string
	}{
		{SchemaID("app"), "schema app"},
		{ExtensionID("citext"), "extension citext"},
		{TableID("public", "users"), "table public.users"},
		{FunctionID("public", "format", "integer"), "function public.format(integer)"},
		{ConstraintID("public", "users", "users_email_key"), "constraint public.users.users_email_key"},
		{TriggerID("public", "users", "users_audit"), "trigger public.users.users_audit"},
		{GrantID(TableID("public", "users"), "alice", []string{"SELECT"}), "grant alice on table public.users"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.id.String())
	}
}

func TestObjectIDLess(t *testing.T) {
	// Kind dominates, then schema, table, name, args.
	assert.True(t, SchemaID("zz").Less(TableID("aa", "aa")))
	assert.True(t, TableID("public", "a").Less(TableID("public", "b")))
	assert.True(t, TableID("app", "z").Less(TableID("public", "a")))
	assert.True(t, FunctionID("public", "f", "integer").Less(FunctionID("public", "f", "text")))
	assert.False(t, TableID("public", "b").Less(TableID("public", "a")))

	// Identical identifiers are not less than each other.
	id := ConstraintID("public", "users", "fk")
	assert.False(t, id.Less(id))
}

func TestFinalizeBuildsReverseDeps(t *testing.T) {
	c := New()
	c.Schemas = append(c.Schemas, &Schema{Name: "public"})
	c.Tables = append(c.Tables, &Table{Schema: "public", Name: "users"})
	c.Views = append(c.Views, &View{
		Schema: "public", Name: "user_stats",
		Deps: []ObjectID{TableID("public", "users")},
	})
	c.Finalize()

	// forward_deps[a] contains b <=> reverse_deps[b] contains a
	for from, tos := range c.ForwardDeps {
		for _, to := range tos {
			assert.Contains(t, c.ReverseDeps[to], from)
		}
	}
	for to, froms := range c.ReverseDeps {
		for _, from := range froms {
			assert.Contains(t, c.ForwardDeps[from], to)
		}
	}

	// Implicit schema edges were synthesized.
	assert.Contains(t, c.ForwardDeps[TableID("public", "users")], SchemaID("public"))
	assert.Contains(t, c.ForwardDeps[ViewID("public", "user_stats")], SchemaID("public"))
}

func TestTransitiveDependents(t *testing.T) {
	c := New()
	c.Schemas = append(c.Schemas, &Schema{Name: "public"})
	c.Tables = append(c.Tables, &Table{Schema: "public", Name: "users"})
	c.Views = append(c.Views, &View{
		Schema: "public", Name: "user_stats",
		Deps: []ObjectID{TableID("public", "users")},
	})
	c.Views = append(c.Views, &View{
		Schema: "public", Name: "stats_rollup",
		Deps: []ObjectID{ViewID("public", "user_stats")},
	})
	c.Finalize()

	deps := c.TransitiveDependents(TableID("public", "users"))
	require.Len(t, deps, 2)
	assert.Equal(t, ViewID("public", "stats_rollup"), deps[0])
	assert.Equal(t, ViewID("public", "user_stats"), deps[1])
}

func TestImplicitOwnerGrant(t *testing.T) {
	owner := &Grant{
		Object:      TableID("public", "users"),
		Grantee:     "app_owner",
		ObjectOwner: "app_owner",
		Privileges:  []string{"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"},
	}
	assert.True(t, owner.IsImplicitOwnerGrant())

	// Same privileges granted to another role are a real grant.
	other := *owner
	other.Grantee = "reporting"
	assert.False(t, other.IsImplicitOwnerGrant())

	// The owner holding a partial set is a real (declared) grant too.
	partial := *owner
	partial.Privileges = []string{"SELECT"}
	assert.False(t, partial.IsImplicitOwnerGrant())

	seq := &Grant{
		Object:      SequenceID("public", "users_id_seq"),
		Grantee:     "app_owner",
		ObjectOwner: "app_owner",
		Privileges:  []string{"USAGE", "SELECT", "UPDATE"},
	}
	assert.True(t, seq.IsImplicitOwnerGrant())
}

func TestViewReplaceCompatible(t *testing.T) {
	old := &View{
		Schema: "public", Name: "v",
		Columns: []ViewColumn{{Name: "id", DataType: "integer"}, {Name: "name", DataType: "text"}},
	}

	appended := &View{
		Schema: "public", Name: "v",
		Columns: []ViewColumn{{Name: "id", DataType: "integer"}, {Name: "name", DataType: "text"}, {Name: "email", DataType: "text"}},
	}
	assert.True(t, appended.ReplaceCompatible(old))

	retyped := &View{
		Schema: "public", Name: "v",
		Columns: []ViewColumn{{Name: "id", DataType: "bigint"}, {Name: "name", DataType: "text"}},
	}
	assert.False(t, retyped.ReplaceCompatible(old))

	reordered := &View{
		Schema: "public", Name: "v",
		Columns: []ViewColumn{{Name: "name", DataType: "text"}, {Name: "id", DataType: "integer"}},
	}
	assert.False(t, reordered.ReplaceCompatible(old))

	dropped := &View{
		Schema: "public", Name: "v",
		Columns: []ViewColumn{{Name: "id", DataType: "integer"}},
	}
	assert.False(t, dropped.ReplaceCompatible(old))
}

func TestIsSystemID(t *testing.T) {
	assert.True(t, IsSystemID(SchemaID("pg_catalog")))
	assert.True(t, IsSystemID(TypeID("pg_catalog", "int4")))
	assert.False(t, IsSystemID(TableID("public", "users")))
	assert.False(t, IsSystemID(SchemaID("public")))
}
