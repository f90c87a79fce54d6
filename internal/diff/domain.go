package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateDomainStep creates a domain with its constraints.
type CreateDomainStep struct {
	Domain *catalog.Domain
}

func (s *CreateDomainStep) Object() catalog.ObjectID { return s.Domain.ID() }
func (s *CreateDomainStep) Operation() Operation     { return OpCreate }

func (s *CreateDomainStep) Render() []RenderedStatement {
	d := s.Domain
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE DOMAIN %s AS %s", qualified(d.Schema, d.Name), d.BaseType)
	if d.Collation != "" {
		b.WriteString(" COLLATE " + ident(d.Collation))
	}
	if d.Default != "" {
		b.WriteString(" DEFAULT " + d.Default)
	}
	if d.NotNull {
		b.WriteString(" NOT NULL")
	}
	for _, con := range d.Constraints {
		fmt.Fprintf(&b, " CONSTRAINT %s CHECK (%s)", ident(con.Name), con.Check)
	}
	b.WriteString(";")
	return []RenderedStatement{safe(b.String())}
}

// DropDomainStep drops a domain.
type DropDomainStep struct {
	Domain *catalog.Domain
}

func (s *DropDomainStep) Object() catalog.ObjectID { return s.Domain.ID() }
func (s *DropDomainStep) Operation() Operation     { return OpDrop }

func (s *DropDomainStep) Render() []RenderedStatement {
	return []RenderedStatement{safe("DROP DOMAIN " + qualified(s.Domain.Schema, s.Domain.Name) + ";")}
}

// AlterDomainStep applies in-place domain changes: default, nullability, and
// per-named-constraint add/drop.
type AlterDomainStep struct {
	Domain *catalog.Domain

	SetDefault      string
	DropDefault     bool
	SetNotNull      bool
	DropNotNull     bool
	AddConstraints  []catalog.DomainConstraint
	DropConstraints []string
}

func (s *AlterDomainStep) Object() catalog.ObjectID { return s.Domain.ID() }
func (s *AlterDomainStep) Operation() Operation     { return OpAlter }

func (s *AlterDomainStep) Render() []RenderedStatement {
	name := qualified(s.Domain.Schema, s.Domain.Name)
	var out []RenderedStatement
	for _, con := range s.DropConstraints {
		out = append(out, destructive(fmt.Sprintf("ALTER DOMAIN %s DROP CONSTRAINT %s;", name, ident(con))))
	}
	if s.DropDefault {
		out = append(out, safe(fmt.Sprintf("ALTER DOMAIN %s DROP DEFAULT;", name)))
	}
	if s.SetDefault != "" {
		out = append(out, safe(fmt.Sprintf("ALTER DOMAIN %s SET DEFAULT %s;", name, s.SetDefault)))
	}
	if s.DropNotNull {
		out = append(out, safe(fmt.Sprintf("ALTER DOMAIN %s DROP NOT NULL;", name)))
	}
	if s.SetNotNull {
		out = append(out, safe(fmt.Sprintf("ALTER DOMAIN %s SET NOT NULL;", name)))
	}
	for _, con := range s.AddConstraints {
		out = append(out, safe(fmt.Sprintf("ALTER DOMAIN %s ADD CONSTRAINT %s CHECK (%s);", name, ident(con.Name), con.Check)))
	}
	return out
}

func diffDomain(old, new *catalog.Domain) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateDomainStep{Domain: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropDomainStep{Domain: old}}
	case old.Equal(new):
		return nil
	}

	// A base-type or collation change cannot happen in place.
	if old.BaseType != new.BaseType || old.Collation != new.Collation {
		steps := []Step{&DropDomainStep{Domain: old}, &CreateDomainStep{Domain: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	}

	alter := &AlterDomainStep{Domain: new}
	if old.Default != new.Default {
		if new.Default == "" {
			alter.DropDefault = true
		} else {
			alter.SetDefault = new.Default
		}
	}
	if old.NotNull != new.NotNull {
		if new.NotNull {
			alter.SetNotNull = true
		} else {
			alter.DropNotNull = true
		}
	}

	// Constraints diff by name; a changed expression drops and re-adds the
	// same name.
	for _, oc := range old.Constraints {
		nc := new.Constraint(oc.Name)
		if nc == nil || nc.Check != oc.Check {
			alter.DropConstraints = append(alter.DropConstraints, oc.Name)
		}
	}
	for _, nc := range new.Constraints {
		oc := old.Constraint(nc.Name)
		if oc == nil || oc.Check != nc.Check {
			alter.AddConstraints = append(alter.AddConstraints, nc)
		}
	}

	var steps []Step
	if len(alter.Render()) > 0 {
		steps = append(steps, alter)
	}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}
