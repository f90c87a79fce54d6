// Package diff compares two catalogs and produces an ordered, renderable
// list of migration steps. The pipeline is All -> Cascade -> Order; each pass
// is pure and operates on values only.
package diff

import (
	"github.com/pgmt/pgmt/internal/catalog"
)

// ColumnOrderPolicy controls how a divergence between declared and database
// column order is treated.
type ColumnOrderPolicy int

const (
	// ColumnOrderStrict errors out on any divergence.
	ColumnOrderStrict ColumnOrderPolicy = iota
	// ColumnOrderWarn accepts the divergence; reporting is the caller's job.
	ColumnOrderWarn
	// ColumnOrderRelaxed ignores column order entirely.
	ColumnOrderRelaxed
)

// Options configure a diff run.
type Options struct {
	ColumnOrder ColumnOrderPolicy
	// DisallowDestructive escalates any destructive step into an
	// IncompatibleReplaceError instead of emitting it.
	DisallowDestructive bool
	// ExternalEdges are file-declared dependencies (from -- require:
	// headers) merged into the orderer's edge set; PostgreSQL does not track
	// plpgsql body references.
	ExternalEdges map[catalog.ObjectID][]catalog.ObjectID
}

// All walks every kind in a fixed order, pairs entities by identifier, and
// concatenates the per-kind differs' output. The result is unordered with
// respect to dependencies; Cascade and Order run afterwards.
func All(old, new *catalog.Catalog, opts Options) ([]Step, error) {
	var steps []Step

	steps = append(steps, pairDiff(old.Schemas, new.Schemas, diffSchema)...)
	steps = append(steps, pairDiff(old.Extensions, new.Extensions, diffExtension)...)

	td := typeDiffer{serverVersion: old.ServerVersion}
	steps = append(steps, pairDiff(old.Types, new.Types, td.diff)...)
	steps = append(steps, pairDiff(old.Domains, new.Domains, diffDomain)...)
	steps = append(steps, pairDiff(old.Sequences, new.Sequences, diffSequence)...)

	tblD := tableDiffer{policy: opts.ColumnOrder}
	tableSteps, err := pairDiffErr(old.Tables, new.Tables, tblD.diff)
	if err != nil {
		return nil, err
	}
	steps = append(steps, tableSteps...)

	steps = append(steps, pairDiff(old.Views, new.Views, diffView)...)
	steps = append(steps, pairDiff(old.Functions, new.Functions, diffFunction)...)
	steps = append(steps, pairDiff(old.Aggregates, new.Aggregates, diffAggregate)...)
	steps = append(steps, pairDiff(old.Indexes, new.Indexes, diffIndex)...)
	steps = append(steps, pairDiff(old.Constraints, new.Constraints, diffConstraint)...)
	steps = append(steps, pairDiff(old.Triggers, new.Triggers, diffTrigger)...)
	steps = append(steps, diffGrants(old.Grants, new.Grants)...)

	if opts.DisallowDestructive {
		for _, s := range steps {
			if IsDestructive(s) {
				return nil, &IncompatibleReplaceError{
					ID:     s.Object(),
					Reason: s.Operation().String() + " would lose data",
				}
			}
		}
	}
	return steps, nil
}

// Pipeline runs the full diff, cascade, and order passes.
func Pipeline(old, new *catalog.Catalog, opts Options) ([]Step, error) {
	steps, err := All(old, new, opts)
	if err != nil {
		return nil, err
	}
	steps = Cascade(steps, old, new)
	return Order(steps, old, new, opts.ExternalEdges)
}

// Render flattens ordered steps into their statements.
func Render(steps []Step) []RenderedStatement {
	var out []RenderedStatement
	for _, s := range steps {
		out = append(out, s.Render()...)
	}
	return out
}

// CreateStatements renders the statements that create one catalog entity
// from scratch, comment included. The schema file generator builds file
// bodies out of these.
func CreateStatements(e catalog.Entity) []RenderedStatement {
	var step Step
	if g, ok := e.(*catalog.Grant); ok {
		step = &GrantStep{Grant: g, Privileges: g.SortedPrivileges()}
	} else {
		step = createStepFor(e)
	}
	if step == nil {
		return nil
	}
	out := step.Render()
	if comment := entityComment(e); comment != "" {
		cs := &CommentStep{Target: e.ID(), Comment: comment}
		out = append(out, cs.Render()...)
	}
	return out
}

func entityComment(e catalog.Entity) string {
	switch v := e.(type) {
	case *catalog.Schema:
		return v.Comment
	case *catalog.Extension:
		return v.Comment
	case *catalog.Type:
		return v.Comment
	case *catalog.Domain:
		return v.Comment
	case *catalog.Sequence:
		return v.Comment
	case *catalog.Table:
		return v.Comment
	case *catalog.View:
		return v.Comment
	case *catalog.Function:
		return v.Comment
	case *catalog.Aggregate:
		return v.Comment
	case *catalog.Index:
		return v.Comment
	case *catalog.Constraint:
		return v.Comment
	case *catalog.Trigger:
		return v.Comment
	default:
		return ""
	}
}

// entity constrains pairDiff to catalog records.
type entity interface {
	catalog.Entity
	comparable
}

// pairDiff merges two identifier-sorted collections with two cursors and
// hands each aligned pair to the kind's differ.
func pairDiff[T entity](old, new []T, fn func(o, n T) []Step) []Step {
	steps, _ := pairDiffErr(old, new, func(o, n T) ([]Step, error) {
		return fn(o, n), nil
	})
	return steps
}

func pairDiffErr[T entity](old, new []T, fn func(o, n T) ([]Step, error)) ([]Step, error) {
	var steps []Step
	i, j := 0, 0
	for i < len(old) || j < len(new) {
		var o, n T
		switch {
		case i >= len(old):
			n = new[j]
			j++
		case j >= len(new):
			o = old[i]
			i++
		case old[i].ID() == new[j].ID():
			o, n = old[i], new[j]
			i++
			j++
		case old[i].ID().Less(new[j].ID()):
			o = old[i]
			i++
		default:
			n = new[j]
			j++
		}
		out, err := fn(o, n)
		if err != nil {
			return nil, err
		}
		steps = append(steps, out...)
	}
	return steps, nil
}
