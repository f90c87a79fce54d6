package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateViewStep creates or replaces a view. OrReplace is set when the differ
// verified structural compatibility with the old view.
type CreateViewStep struct {
	View      *catalog.View
	OrReplace bool
}

func (s *CreateViewStep) Object() catalog.ObjectID { return s.View.ID() }

func (s *CreateViewStep) Operation() Operation {
	if s.OrReplace {
		return OpReplace
	}
	return OpCreate
}

func (s *CreateViewStep) Render() []RenderedStatement {
	v := s.View
	create := "CREATE VIEW"
	if s.OrReplace {
		create = "CREATE OR REPLACE VIEW"
	}
	var opts []string
	if v.SecurityInvoker {
		opts = append(opts, "security_invoker=true")
	}
	if v.SecurityBarrier {
		opts = append(opts, "security_barrier=true")
	}
	with := ""
	if len(opts) > 0 {
		with = fmt.Sprintf(" WITH (%s)", strings.Join(opts, ", "))
	}
	sql := fmt.Sprintf("%s %s%s AS\n%s;", create, qualified(v.Schema, v.Name), with, v.Definition)
	return []RenderedStatement{safe(sql)}
}

// DropViewStep drops a view. Views are recreatable from the declared schema,
// so the drop is not destructive.
type DropViewStep struct {
	View *catalog.View
}

func (s *DropViewStep) Object() catalog.ObjectID { return s.View.ID() }
func (s *DropViewStep) Operation() Operation     { return OpDrop }

func (s *DropViewStep) Render() []RenderedStatement {
	return []RenderedStatement{safe("DROP VIEW " + qualified(s.View.Schema, s.View.Name) + ";")}
}

// SetViewOptionsStep flips security_invoker/security_barrier without
// replacing the view.
type SetViewOptionsStep struct {
	View *catalog.View
	Old  *catalog.View
}

func (s *SetViewOptionsStep) Object() catalog.ObjectID { return s.View.ID() }
func (s *SetViewOptionsStep) Operation() Operation     { return OpSetOption }

func (s *SetViewOptionsStep) Render() []RenderedStatement {
	name := qualified(s.View.Schema, s.View.Name)
	var set, reset []string
	flip := func(oldVal, newVal bool, opt string) {
		if oldVal == newVal {
			return
		}
		if newVal {
			set = append(set, opt+"=true")
		} else {
			reset = append(reset, opt)
		}
	}
	flip(s.Old.SecurityInvoker, s.View.SecurityInvoker, "security_invoker")
	flip(s.Old.SecurityBarrier, s.View.SecurityBarrier, "security_barrier")

	var out []RenderedStatement
	if len(set) > 0 {
		out = append(out, safe(fmt.Sprintf("ALTER VIEW %s SET (%s);", name, strings.Join(set, ", "))))
	}
	if len(reset) > 0 {
		out = append(out, safe(fmt.Sprintf("ALTER VIEW %s RESET (%s);", name, strings.Join(reset, ", "))))
	}
	return out
}

func diffView(old, new *catalog.View) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateViewStep{View: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropViewStep{View: old}}
	case old.Equal(new):
		return nil
	}

	var steps []Step

	if old.Definition != new.Definition || !columnsEqual(old, new) {
		if new.ReplaceCompatible(old) {
			steps = append(steps, &CreateViewStep{View: new, OrReplace: true})
		} else {
			// Structural incompatibility: the view is dropped and recreated,
			// and the cascade pass takes care of dependents.
			steps = append(steps,
				&DropViewStep{View: old},
				&CreateViewStep{View: new},
			)
			steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
			return steps
		}
	}

	// A pure option flip never forces a replace.
	if old.SecurityInvoker != new.SecurityInvoker || old.SecurityBarrier != new.SecurityBarrier {
		steps = append(steps, &SetViewOptionsStep{View: new, Old: old})
	}

	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}

func columnsEqual(old, new *catalog.View) bool {
	if len(old.Columns) != len(new.Columns) {
		return false
	}
	for i := range old.Columns {
		if old.Columns[i] != new.Columns[i] {
			return false
		}
	}
	return true
}
