package diff

import (
	"fmt"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateFunctionStep creates or replaces a function using the full definition
// text. CREATE OR REPLACE always succeeds while the identity (schema, name,
// argument signature) is unchanged; identity changes are two different
// identifiers and therefore a drop plus a create.
type CreateFunctionStep struct {
	Function *catalog.Function
	Replace  bool
}

func (s *CreateFunctionStep) Object() catalog.ObjectID { return s.Function.ID() }

func (s *CreateFunctionStep) Operation() Operation {
	if s.Replace {
		return OpReplace
	}
	return OpCreate
}

func (s *CreateFunctionStep) Render() []RenderedStatement {
	return []RenderedStatement{safe(ensureTerminated(s.Function.Definition))}
}

// DropFunctionStep drops one function overload.
type DropFunctionStep struct {
	Function *catalog.Function
}

func (s *DropFunctionStep) Object() catalog.ObjectID { return s.Function.ID() }
func (s *DropFunctionStep) Operation() Operation     { return OpDrop }

func (s *DropFunctionStep) Render() []RenderedStatement {
	kind := "FUNCTION"
	if s.Function.IsProcedure {
		kind = "PROCEDURE"
	}
	sql := fmt.Sprintf("DROP %s %s(%s);", kind, qualified(s.Function.Schema, s.Function.Name), s.Function.Args)
	return []RenderedStatement{safe(sql)}
}

func diffFunction(old, new *catalog.Function) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateFunctionStep{Function: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropFunctionStep{Function: old}}
	case old.Equal(new):
		return nil
	}

	var steps []Step
	if !functionBodiesEqual(old, new) {
		steps = append(steps, &CreateFunctionStep{Function: new, Replace: true})
	}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}

func functionBodiesEqual(old, new *catalog.Function) bool {
	o := *old
	n := *new
	o.Comment = ""
	n.Comment = ""
	o.Deps = nil
	n.Deps = nil
	return o.Equal(&n)
}

func ensureTerminated(sql string) string {
	for len(sql) > 0 && (sql[len(sql)-1] == '\n' || sql[len(sql)-1] == ' ') {
		sql = sql[:len(sql)-1]
	}
	if len(sql) > 0 && sql[len(sql)-1] != ';' {
		sql += ";"
	}
	return sql
}

// CreateAggregateStep reconstructs CREATE AGGREGATE from parts; PostgreSQL
// has no pretty-printer for aggregates.
type CreateAggregateStep struct {
	Aggregate *catalog.Aggregate
}

func (s *CreateAggregateStep) Object() catalog.ObjectID { return s.Aggregate.ID() }
func (s *CreateAggregateStep) Operation() Operation     { return OpCreate }

func (s *CreateAggregateStep) Render() []RenderedStatement {
	a := s.Aggregate
	parts := []string{
		"SFUNC = " + a.TransitionFunc,
		"STYPE = " + a.StateType,
	}
	if a.FinalFunc != "" {
		parts = append(parts, "FINALFUNC = "+a.FinalFunc)
	}
	if a.CombineFunc != "" {
		parts = append(parts, "COMBINEFUNC = "+a.CombineFunc)
	}
	if a.InitialCondition != "" {
		parts = append(parts, "INITCOND = "+literal(a.InitialCondition))
	}
	sql := fmt.Sprintf("CREATE AGGREGATE %s(%s) (\n    %s\n);",
		qualified(a.Schema, a.Name), a.Args, joinIndented(parts))
	return []RenderedStatement{safe(sql)}
}

func joinIndented(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ",\n    "
		}
		out += p
	}
	return out
}

// DropAggregateStep drops one aggregate overload.
type DropAggregateStep struct {
	Aggregate *catalog.Aggregate
}

func (s *DropAggregateStep) Object() catalog.ObjectID { return s.Aggregate.ID() }
func (s *DropAggregateStep) Operation() Operation     { return OpDrop }

func (s *DropAggregateStep) Render() []RenderedStatement {
	sql := fmt.Sprintf("DROP AGGREGATE %s(%s);", qualified(s.Aggregate.Schema, s.Aggregate.Name), s.Aggregate.Args)
	return []RenderedStatement{safe(sql)}
}

func diffAggregate(old, new *catalog.Aggregate) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateAggregateStep{Aggregate: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropAggregateStep{Aggregate: old}}
	case old.Equal(new):
		return nil
	}

	if aggregateStructurallyEqual(old, new) {
		return diffComment(new.ID(), old.Comment, new.Comment)
	}

	// No in-place replace exists for aggregates.
	steps := []Step{
		&DropAggregateStep{Aggregate: old},
		&CreateAggregateStep{Aggregate: new},
	}
	steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
	return steps
}

func aggregateStructurallyEqual(old, new *catalog.Aggregate) bool {
	o := *old
	n := *new
	o.Comment = ""
	n.Comment = ""
	o.Deps = nil
	n.Deps = nil
	return o.Equal(&n)
}
