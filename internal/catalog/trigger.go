package catalog

// TriggerTiming is when the trigger fires relative to the event.
type TriggerTiming string

const (
	TriggerTimingBefore    TriggerTiming = "BEFORE"
	TriggerTimingAfter     TriggerTiming = "AFTER"
	TriggerTimingInsteadOf TriggerTiming = "INSTEAD OF"
)

// TriggerLevel is row-level or statement-level execution.
type TriggerLevel string

const (
	TriggerLevelRow       TriggerLevel = "ROW"
	TriggerLevelStatement TriggerLevel = "STATEMENT"
)

// Trigger represents a trigger on a table or view. The structured fields are
// authoritative for diffing; Definition is kept for rendering only, so
// whitespace drift in pg_get_triggerdef output never produces a false diff.
type Trigger struct {
	Schema string
	Table  string
	Name   string
	Timing TriggerTiming
	Events []string // INSERT, UPDATE, DELETE, TRUNCATE, in firing declaration order
	Level  TriggerLevel
	// UpdateColumns holds the column list of UPDATE OF cols, if any.
	UpdateColumns []string
	When          string
	Function      ObjectID // target function identifier
	// ReferencingOld/New are transition table names from a REFERENCING clause.
	ReferencingOld string
	ReferencingNew string
	Definition     string
	Comment        string
	Deps           []ObjectID
}

// ID returns the trigger's identifier.
func (t *Trigger) ID() ObjectID { return TriggerID(t.Schema, t.Table, t.Name) }

// DependsOn returns the trigger's dependencies: its table and its function.
func (t *Trigger) DependsOn() []ObjectID {
	deps := append([]ObjectID(nil), t.Deps...)
	deps = append(deps, TableID(t.Schema, t.Table))
	if !t.Function.IsZero() {
		deps = append(deps, t.Function)
	}
	return dedupeIDs(deps)
}

// Equal reports whether two triggers are identical for diffing purposes.
// Definition text deliberately does not participate.
func (t *Trigger) Equal(other *Trigger) bool {
	if t.Schema != other.Schema || t.Table != other.Table || t.Name != other.Name {
		return false
	}
	if t.Timing != other.Timing || t.Level != other.Level || t.When != other.When {
		return false
	}
	if !equalStrings(t.Events, other.Events) || !equalStrings(t.UpdateColumns, other.UpdateColumns) {
		return false
	}
	if t.Function != other.Function {
		return false
	}
	if t.ReferencingOld != other.ReferencingOld || t.ReferencingNew != other.ReferencingNew {
		return false
	}
	return t.Comment == other.Comment
}
