package catalog

import "strings"

// Kind discriminates the object kinds the engine understands. The numeric
// order doubles as the deterministic tie-break order for sorting identifiers
// of different kinds.
type Kind int

const (
	KindSchema Kind = iota
	KindExtension
	KindType
	KindDomain
	KindSequence
	KindTable
	KindView
	KindFunction
	KindAggregate
	KindIndex
	KindConstraint
	KindTrigger
	KindGrant
)

// String returns the lower-case kind name as it appears in rendered SQL
// keywords and error messages.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindExtension:
		return "extension"
	case KindType:
		return "type"
	case KindDomain:
		return "domain"
	case KindSequence:
		return "sequence"
	case KindTable:
		return "table"
	case KindView:
		return "view"
	case KindFunction:
		return "function"
	case KindAggregate:
		return "aggregate"
	case KindIndex:
		return "index"
	case KindConstraint:
		return "constraint"
	case KindTrigger:
		return "trigger"
	case KindGrant:
		return "grant"
	default:
		return "unknown"
	}
}

// ObjectID uniquely names a schema object within one database. It is the only
// cross-component reference mechanism: entities, dependency edges, and
// migration steps all carry ObjectIDs, never in-memory handles.
//
// Not every field is meaningful for every kind:
//
//	Schema/Extension:     Name
//	Type/Domain/Sequence: Schema, Name
//	Table/View/Index:     Schema, Name
//	Function/Aggregate:   Schema, Name, Args (identity argument string)
//	Constraint/Trigger:   Schema, Table, Name
//	Grant:                Name (target object key), Grantee, Privs
//
// The struct is comparable, so it can key maps directly.
type ObjectID struct {
	Kind    Kind
	Schema  string
	Name    string
	Table   string
	Args    string
	Grantee string
	Privs   string
}

// SchemaID names a schema (namespace).
func SchemaID(name string) ObjectID {
	return ObjectID{Kind: KindSchema, Name: name}
}

// ExtensionID names an installed extension.
func ExtensionID(name string) ObjectID {
	return ObjectID{Kind: KindExtension, Name: name}
}

// TypeID names a user-defined type (enum, composite, or range).
func TypeID(schema, name string) ObjectID {
	return ObjectID{Kind: KindType, Schema: schema, Name: name}
}

// DomainID names a domain.
func DomainID(schema, name string) ObjectID {
	return ObjectID{Kind: KindDomain, Schema: schema, Name: name}
}

// SequenceID names a sequence.
func SequenceID(schema, name string) ObjectID {
	return ObjectID{Kind: KindSequence, Schema: schema, Name: name}
}

// TableID names a table.
func TableID(schema, name string) ObjectID {
	return ObjectID{Kind: KindTable, Schema: schema, Name: name}
}

// ViewID names a view.
func ViewID(schema, name string) ObjectID {
	return ObjectID{Kind: KindView, Schema: schema, Name: name}
}

// FunctionID names one function overload. args is the identity argument
// string as produced by pg_get_function_identity_arguments, so two overloads
// of the same name are distinct identifiers.
func FunctionID(schema, name, args string) ObjectID {
	return ObjectID{Kind: KindFunction, Schema: schema, Name: name, Args: args}
}

// AggregateID names one aggregate overload.
func AggregateID(schema, name, args string) ObjectID {
	return ObjectID{Kind: KindAggregate, Schema: schema, Name: name, Args: args}
}

// IndexID names an index. Index names are schema-unique in PostgreSQL, so the
// owning table is not part of the identity.
func IndexID(schema, name string) ObjectID {
	return ObjectID{Kind: KindIndex, Schema: schema, Name: name}
}

// ConstraintID names a table constraint.
func ConstraintID(schema, table, name string) ObjectID {
	return ObjectID{Kind: KindConstraint, Schema: schema, Table: table, Name: name}
}

// TriggerID names a trigger on a table.
func TriggerID(schema, table, name string) ObjectID {
	return ObjectID{Kind: KindTrigger, Schema: schema, Table: table, Name: name}
}

// GrantID names one grant record: a grantee's privilege set on one object.
// The target object is flattened into Name so the identifier stays a plain
// comparable struct.
func GrantID(target ObjectID, grantee string, privs []string) ObjectID {
	return ObjectID{
		Kind:    KindGrant,
		Name:    target.String(),
		Grantee: grantee,
		Privs:   strings.Join(privs, ","),
	}
}

// String renders a human-readable form used in error messages and grant keys,
// e.g. "table public.users" or "function public.format(integer)".
func (id ObjectID) String() string {
	var b strings.Builder
	b.WriteString(id.Kind.String())
	b.WriteByte(' ')
	switch id.Kind {
	case KindSchema, KindExtension:
		b.WriteString(id.Name)
	case KindFunction, KindAggregate:
		b.WriteString(id.Schema)
		b.WriteByte('.')
		b.WriteString(id.Name)
		b.WriteByte('(')
		b.WriteString(id.Args)
		b.WriteByte(')')
	case KindConstraint, KindTrigger:
		b.WriteString(id.Schema)
		b.WriteByte('.')
		b.WriteString(id.Table)
		b.WriteByte('.')
		b.WriteString(id.Name)
	case KindGrant:
		b.WriteString(id.Grantee)
		b.WriteString(" on ")
		b.WriteString(id.Name)
	default:
		b.WriteString(id.Schema)
		b.WriteByte('.')
		b.WriteString(id.Name)
	}
	return b.String()
}

// Less imposes the total order used everywhere determinism matters: catalog
// collections, dependency walks, and the orderer's tie-break.
func (id ObjectID) Less(other ObjectID) bool {
	if id.Kind != other.Kind {
		return id.Kind < other.Kind
	}
	if id.Schema != other.Schema {
		return id.Schema < other.Schema
	}
	if id.Table != other.Table {
		return id.Table < other.Table
	}
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	if id.Args != other.Args {
		return id.Args < other.Args
	}
	if id.Grantee != other.Grantee {
		return id.Grantee < other.Grantee
	}
	return id.Privs < other.Privs
}

// IsZero reports whether the identifier is the zero value.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}
