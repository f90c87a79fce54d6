package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// AddConstraintStep adds a table constraint via ALTER TABLE.
type AddConstraintStep struct {
	Constraint *catalog.Constraint
}

func (s *AddConstraintStep) Object() catalog.ObjectID { return s.Constraint.ID() }
func (s *AddConstraintStep) Operation() Operation     { return OpCreate }

func (s *AddConstraintStep) Render() []RenderedStatement {
	c := s.Constraint
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s ", qualified(c.Schema, c.Table), ident(c.Name))

	switch c.Type {
	case catalog.ConstraintTypeForeignKey:
		refSchema := c.RefSchema
		if refSchema == "" {
			refSchema = c.Schema
		}
		fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s)",
			identList(c.Columns), qualified(refSchema, c.RefTable), identList(c.RefColumns))
		if c.OnDelete != "" && c.OnDelete != "NO ACTION" {
			b.WriteString(" ON DELETE " + c.OnDelete)
		}
		if c.OnUpdate != "" && c.OnUpdate != "NO ACTION" {
			b.WriteString(" ON UPDATE " + c.OnUpdate)
		}
	case catalog.ConstraintTypeUnique:
		fmt.Fprintf(&b, "UNIQUE (%s)", identList(c.Columns))
	case catalog.ConstraintTypeCheck:
		fmt.Fprintf(&b, "CHECK (%s)", c.CheckClause)
	case catalog.ConstraintTypeExclusion:
		method := c.ExclusionMethod
		if method == "" {
			method = "gist"
		}
		fmt.Fprintf(&b, "EXCLUDE USING %s (%s)", method, strings.Join(c.ExclusionElements, ", "))
		if c.ExclusionWhere != "" {
			fmt.Fprintf(&b, " WHERE (%s)", c.ExclusionWhere)
		}
	}

	if c.Deferrable {
		b.WriteString(" DEFERRABLE")
		if c.InitiallyDeferred {
			b.WriteString(" INITIALLY DEFERRED")
		}
	}
	b.WriteString(";")
	return []RenderedStatement{safe(b.String())}
}

// DropConstraintStep drops a table constraint. Dropping CHECK or FOREIGN KEY
// constraints discards enforcement state the schema cannot restore for
// existing rows, so those are destructive.
type DropConstraintStep struct {
	Constraint *catalog.Constraint
}

func (s *DropConstraintStep) Object() catalog.ObjectID { return s.Constraint.ID() }
func (s *DropConstraintStep) Operation() Operation     { return OpDrop }

func (s *DropConstraintStep) Render() []RenderedStatement {
	c := s.Constraint
	sql := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified(c.Schema, c.Table), ident(c.Name))
	switch c.Type {
	case catalog.ConstraintTypeCheck, catalog.ConstraintTypeForeignKey:
		return []RenderedStatement{destructive(sql)}
	default:
		return []RenderedStatement{safe(sql)}
	}
}

func diffConstraint(old, new *catalog.Constraint) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&AddConstraintStep{Constraint: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropConstraintStep{Constraint: old}}
	case old.Equal(new):
		return nil
	}

	if constraintStructurallyEqual(old, new) {
		return diffComment(new.ID(), old.Comment, new.Comment)
	}

	// There is no in-place constraint ALTER; any change, including a changed
	// referential action, drops and re-adds.
	steps := []Step{
		&DropConstraintStep{Constraint: old},
		&AddConstraintStep{Constraint: new},
	}
	steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
	return steps
}

func constraintStructurallyEqual(old, new *catalog.Constraint) bool {
	o := *old
	n := *new
	o.Comment = ""
	n.Comment = ""
	o.Deps = nil
	n.Deps = nil
	return o.Equal(&n)
}
