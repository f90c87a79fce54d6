package diff

import (
	"github.com/pgmt/pgmt/internal/catalog"
)

// Cascade injects DROP and re-CREATE steps for dependents of any object that
// is structurally dropped or replaced. A dependent that still exists in the
// new catalog comes back after its dependency is rebuilt; one that was
// dropped independently is left to its own step. The pass is idempotent:
// synthetic steps are themselves classified, so a second run finds nothing
// new to do.
func Cascade(steps []Step, old, new *catalog.Catalog) []Step {
	dropped := make(map[catalog.ObjectID]bool)
	created := make(map[catalog.ObjectID]bool)
	var destructiveTargets []catalog.ObjectID

	for _, s := range steps {
		id := s.Object()
		switch {
		case s.Operation() == OpDrop:
			dropped[id] = true
			destructiveTargets = append(destructiveTargets, id)
		case isDropCreate(s):
			destructiveTargets = append(destructiveTargets, id)
		case s.Operation() == OpCreate || s.Operation() == OpReplace:
			created[id] = true
		}
	}
	// Column type changes structurally invalidate dependent views the same
	// way a replace does.
	for _, s := range steps {
		if alter, ok := underlying(s).(*AlterTableStep); ok {
			if len(alter.TypeChanges) > 0 || len(alter.RecreateColumns) > 0 || len(alter.DropColumns) > 0 {
				destructiveTargets = append(destructiveTargets, s.Object())
			}
		}
	}

	var out []Step
	seenDrop := make(map[catalog.ObjectID]bool)
	seenCreate := make(map[catalog.ObjectID]bool)

	for _, target := range destructiveTargets {
		for _, dep := range old.TransitiveDependents(target) {
			if dropped[dep] || seenDrop[dep] {
				continue
			}
			dropStep := dropStepFor(old.Find(dep))
			if dropStep == nil {
				continue
			}
			seenDrop[dep] = true
			out = append(out, markSynthetic(dropStep))

			// Recreate the dependent only if it survives into the new
			// catalog and nothing else already creates it.
			if created[dep] || seenCreate[dep] {
				continue
			}
			if entity := new.Find(dep); entity != nil {
				if createStep := createStepFor(entity); createStep != nil {
					seenCreate[dep] = true
					out = append(out, markSynthetic(createStep))
				}
			}
		}
	}

	return append(steps, out...)
}

func isDropCreate(s Step) bool {
	_, ok := underlying(s).(dropCreate)
	return ok
}

// dropStepFor builds the drop step for an arbitrary catalog entity.
func dropStepFor(e catalog.Entity) Step {
	switch v := e.(type) {
	case *catalog.Schema:
		return &DropSchemaStep{Schema: v}
	case *catalog.Extension:
		return &DropExtensionStep{Extension: v}
	case *catalog.Type:
		return &DropTypeStep{Type: v}
	case *catalog.Domain:
		return &DropDomainStep{Domain: v}
	case *catalog.Sequence:
		return &DropSequenceStep{Sequence: v}
	case *catalog.Table:
		return &DropTableStep{Table: v}
	case *catalog.View:
		return &DropViewStep{View: v}
	case *catalog.Function:
		return &DropFunctionStep{Function: v}
	case *catalog.Aggregate:
		return &DropAggregateStep{Aggregate: v}
	case *catalog.Index:
		return &DropIndexStep{Index: v}
	case *catalog.Constraint:
		return &DropConstraintStep{Constraint: v}
	case *catalog.Trigger:
		return &DropTriggerStep{Trigger: v}
	default:
		return nil
	}
}

// createStepFor builds the create step for an arbitrary catalog entity.
func createStepFor(e catalog.Entity) Step {
	switch v := e.(type) {
	case *catalog.Schema:
		return &CreateSchemaStep{Schema: v}
	case *catalog.Extension:
		return &CreateExtensionStep{Extension: v}
	case *catalog.Type:
		return &CreateTypeStep{Type: v}
	case *catalog.Domain:
		return &CreateDomainStep{Domain: v}
	case *catalog.Sequence:
		return &CreateSequenceStep{Sequence: v}
	case *catalog.Table:
		return &CreateTableStep{Table: v}
	case *catalog.View:
		return &CreateViewStep{View: v}
	case *catalog.Function:
		return &CreateFunctionStep{Function: v}
	case *catalog.Aggregate:
		return &CreateAggregateStep{Aggregate: v}
	case *catalog.Index:
		return &CreateIndexStep{Index: v}
	case *catalog.Constraint:
		return &AddConstraintStep{Constraint: v}
	case *catalog.Trigger:
		return &CreateTriggerStep{Trigger: v}
	default:
		return nil
	}
}
