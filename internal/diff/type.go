package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateTypeStep creates an enum, composite, or range type.
type CreateTypeStep struct {
	Type *catalog.Type
}

func (s *CreateTypeStep) Object() catalog.ObjectID { return s.Type.ID() }
func (s *CreateTypeStep) Operation() Operation     { return OpCreate }

func (s *CreateTypeStep) Render() []RenderedStatement {
	t := s.Type
	name := qualified(t.Schema, t.Name)
	var sql string
	switch t.Kind {
	case catalog.TypeKindEnum:
		values := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			values[i] = literal(v)
		}
		sql = fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", name, strings.Join(values, ", "))
	case catalog.TypeKindComposite:
		attrs := make([]string, len(t.Attributes))
		for i, a := range t.Attributes {
			attr := ident(a.Name) + " " + a.DataType
			if a.Collation != "" {
				attr += " COLLATE " + ident(a.Collation)
			}
			attrs[i] = attr
		}
		sql = fmt.Sprintf("CREATE TYPE %s AS (%s);", name, strings.Join(attrs, ", "))
	case catalog.TypeKindRange:
		parts := []string{"subtype = " + t.Range.Subtype}
		if t.Range.SubtypeOpClass != "" {
			parts = append(parts, "subtype_opclass = "+t.Range.SubtypeOpClass)
		}
		if t.Range.Collation != "" {
			parts = append(parts, "collation = "+ident(t.Range.Collation))
		}
		if t.Range.Canonical != "" {
			parts = append(parts, "canonical = "+t.Range.Canonical)
		}
		if t.Range.SubtypeDiff != "" {
			parts = append(parts, "subtype_diff = "+t.Range.SubtypeDiff)
		}
		sql = fmt.Sprintf("CREATE TYPE %s AS RANGE (%s);", name, strings.Join(parts, ", "))
	}
	return []RenderedStatement{safe(sql)}
}

// DropTypeStep drops a type. Composite and enum types are recreatable from
// the declared schema, so the drop itself is not classified destructive.
type DropTypeStep struct {
	Type *catalog.Type
}

func (s *DropTypeStep) Object() catalog.ObjectID { return s.Type.ID() }
func (s *DropTypeStep) Operation() Operation     { return OpDrop }

func (s *DropTypeStep) Render() []RenderedStatement {
	return []RenderedStatement{safe("DROP TYPE " + qualified(s.Type.Schema, s.Type.Name) + ";")}
}

// AddEnumValueStep appends one value into an existing enum. PostgreSQL
// requires one statement per value; before PostgreSQL 12 the statement cannot
// run inside a transaction.
type AddEnumValueStep struct {
	Type  *catalog.Type
	Value string
	// After is the existing value the new one sorts after. When empty the
	// value leads the enum and Before names the value it precedes.
	After  string
	Before string
	// ServerVersion is the target server's version number; zero (unknown)
	// renders conservatively as non-transactional.
	ServerVersion int
}

func (s *AddEnumValueStep) Object() catalog.ObjectID { return s.Type.ID() }
func (s *AddEnumValueStep) Operation() Operation     { return OpAlter }

func (s *AddEnumValueStep) Render() []RenderedStatement {
	sql := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", qualified(s.Type.Schema, s.Type.Name), literal(s.Value))
	if s.After != "" {
		sql += " AFTER " + literal(s.After)
	} else if s.Before != "" {
		sql += " BEFORE " + literal(s.Before)
	}
	sql += ";"
	if s.ServerVersion >= 120000 {
		return []RenderedStatement{safe(sql)}
	}
	return []RenderedStatement{nonTransactional(sql)}
}

// typeDiffer closes over the server version needed for enum value steps.
type typeDiffer struct {
	serverVersion int
}

func (d typeDiffer) diff(old, new *catalog.Type) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateTypeStep{Type: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropTypeStep{Type: old}}
	case old.Equal(new):
		return nil
	}

	var steps []Step
	if old.Kind == new.Kind && old.Kind == catalog.TypeKindEnum {
		if added, ok := enumAdditions(old.EnumValues, new.EnumValues); ok {
			for _, add := range added {
				step := &AddEnumValueStep{
					Type:          new,
					Value:         add.value,
					After:         add.after,
					ServerVersion: d.serverVersion,
				}
				if step.After == "" && len(old.EnumValues) > 0 {
					step.Before = old.EnumValues[0]
				}
				steps = append(steps, step)
			}
			steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
			return steps
		}
	}

	if old.Kind == new.Kind && structurallyEqualType(old, new) {
		// Same shape, comment-only change.
		return diffComment(new.ID(), old.Comment, new.Comment)
	}

	// Removed or reordered enum values, attribute changes on composites, and
	// range parameter changes are all incompatible in place.
	steps = append(steps, &DropTypeStep{Type: old}, &CreateTypeStep{Type: new})
	steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
	return steps
}

func structurallyEqualType(old, new *catalog.Type) bool {
	o := *old
	n := *new
	o.Comment = ""
	n.Comment = ""
	return o.Equal(&n)
}

type enumAddition struct {
	value string
	after string
}

// enumAdditions reports whether new contains every old value in the same
// relative order, returning the inserted values each paired with its
// predecessor. Reorderings and removals report false.
func enumAdditions(old, new []string) ([]enumAddition, bool) {
	var additions []enumAddition
	oldIdx := 0
	prev := ""
	for _, v := range new {
		if oldIdx < len(old) && old[oldIdx] == v {
			oldIdx++
		} else {
			additions = append(additions, enumAddition{value: v, after: prev})
		}
		prev = v
	}
	if oldIdx != len(old) {
		return nil, false
	}
	return additions, true
}
