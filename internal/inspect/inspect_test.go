package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialDefaultRe(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"nextval('users_id_seq'::regclass)", "users_id_seq"},
		{"nextval('app.users_id_seq'::regclass)", "app.users_id_seq"},
		{`nextval('"Users_id_seq"'::regclass)`, `"Users_id_seq"`},
		{"now()", ""},
		{"'constant'::text", ""},
	}
	for _, tt := range tests {
		m := serialDefaultRe.FindStringSubmatch(tt.expr)
		if tt.want == "" {
			assert.Nil(t, m, tt.expr)
			continue
		}
		if assert.NotNil(t, m, tt.expr) {
			assert.Equal(t, tt.want, m[1], tt.expr)
		}
	}
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in         string
		fallback   string
		wantSchema string
		wantName   string
	}{
		{"users_id_seq", "public", "public", "users_id_seq"},
		{"app.users_id_seq", "public", "app", "users_id_seq"},
		{`"Users_id_seq"`, "public", "public", "Users_id_seq"},
	}
	for _, tt := range tests {
		schema, name := splitQualified(tt.in, tt.fallback)
		assert.Equal(t, tt.wantSchema, schema, tt.in)
		assert.Equal(t, tt.wantName, name, tt.in)
	}
}

func TestCheckClauseFromDefinition(t *testing.T) {
	assert.Equal(t, "(price > 0)", checkClauseFromDefinition("CHECK ((price > 0))"))
	assert.Equal(t, "char_length(name) > 0", checkClauseFromDefinition("CHECK (char_length(name) > 0)"))
}

func TestExclusionFromDefinition(t *testing.T) {
	method, elements, where := exclusionFromDefinition(
		"EXCLUDE USING gist (room WITH =, during WITH &&) WHERE ((NOT cancelled))")
	assert.Equal(t, "gist", method)
	assert.Equal(t, []string{"room WITH =", "during WITH &&"}, elements)
	assert.Equal(t, "(NOT cancelled)", where)

	method, elements, where = exclusionFromDefinition("EXCLUDE USING gist (room WITH =)")
	assert.Equal(t, "gist", method)
	assert.Equal(t, []string{"room WITH ="}, elements)
	assert.Empty(t, where)
}

func TestTriggerWhenFromDefinition(t *testing.T) {
	def := "CREATE TRIGGER audit AFTER UPDATE ON public.users FOR EACH ROW WHEN ((old.email IS DISTINCT FROM new.email)) EXECUTE FUNCTION public.log_change()"
	assert.Equal(t, "(old.email IS DISTINCT FROM new.email)", triggerWhenFromDefinition(def))

	noWhen := "CREATE TRIGGER audit AFTER UPDATE ON public.users FOR EACH ROW EXECUTE FUNCTION public.log_change()"
	assert.Empty(t, triggerWhenFromDefinition(noWhen))
}

func TestTriggerTypeBits(t *testing.T) {
	// BEFORE INSERT OR UPDATE ... FOR EACH ROW
	tgtype := tgTypeRow | tgTypeBefore | tgTypeInsert | tgTypeUpdate
	assert.NotZero(t, tgtype&tgTypeRow)
	assert.NotZero(t, tgtype&tgTypeBefore)
	assert.Zero(t, tgtype&tgTypeInsteadOf)
	assert.Zero(t, tgtype&tgTypeTruncate)
}

func TestReferentialActions(t *testing.T) {
	assert.Equal(t, "CASCADE", referentialActions["c"])
	assert.Equal(t, "NO ACTION", referentialActions["a"])
	assert.Equal(t, "SET NULL", referentialActions["n"])
}
