package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateTriggerStep creates a trigger from its structured fields.
type CreateTriggerStep struct {
	Trigger *catalog.Trigger
}

func (s *CreateTriggerStep) Object() catalog.ObjectID { return s.Trigger.ID() }
func (s *CreateTriggerStep) Operation() Operation     { return OpCreate }

func (s *CreateTriggerStep) Render() []RenderedStatement {
	return []RenderedStatement{safe(createTriggerSQL(s.Trigger))}
}

func createTriggerSQL(t *catalog.Trigger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TRIGGER %s\n    %s ", ident(t.Name), t.Timing)

	events := make([]string, len(t.Events))
	for i, ev := range t.Events {
		if ev == "UPDATE" && len(t.UpdateColumns) > 0 {
			events[i] = "UPDATE OF " + identList(t.UpdateColumns)
		} else {
			events[i] = ev
		}
	}
	b.WriteString(strings.Join(events, " OR "))

	fmt.Fprintf(&b, " ON %s", qualified(t.Schema, t.Table))

	if t.ReferencingOld != "" || t.ReferencingNew != "" {
		b.WriteString("\n    REFERENCING")
		if t.ReferencingOld != "" {
			b.WriteString(" OLD TABLE AS " + ident(t.ReferencingOld))
		}
		if t.ReferencingNew != "" {
			b.WriteString(" NEW TABLE AS " + ident(t.ReferencingNew))
		}
	}

	fmt.Fprintf(&b, "\n    FOR EACH %s", t.Level)
	if t.When != "" {
		fmt.Fprintf(&b, "\n    WHEN (%s)", t.When)
	}
	fmt.Fprintf(&b, "\n    EXECUTE FUNCTION %s();", qualified(t.Function.Schema, t.Function.Name))
	return b.String()
}

// DropTriggerStep drops a trigger.
type DropTriggerStep struct {
	Trigger *catalog.Trigger
}

func (s *DropTriggerStep) Object() catalog.ObjectID { return s.Trigger.ID() }
func (s *DropTriggerStep) Operation() Operation     { return OpDrop }

func (s *DropTriggerStep) Render() []RenderedStatement {
	sql := fmt.Sprintf("DROP TRIGGER %s ON %s;", ident(s.Trigger.Name), qualified(s.Trigger.Schema, s.Trigger.Table))
	return []RenderedStatement{safe(sql)}
}

// ReplaceTriggerStep renders DROP TRIGGER followed by CREATE TRIGGER;
// PostgreSQL has no trigger REPLACE.
type ReplaceTriggerStep struct {
	Old *catalog.Trigger
	New *catalog.Trigger
}

func (s *ReplaceTriggerStep) Object() catalog.ObjectID { return s.New.ID() }
func (s *ReplaceTriggerStep) Operation() Operation     { return OpReplace }
func (s *ReplaceTriggerStep) dropCreate()              {}

func (s *ReplaceTriggerStep) Render() []RenderedStatement {
	return []RenderedStatement{
		safe(fmt.Sprintf("DROP TRIGGER %s ON %s;", ident(s.Old.Name), qualified(s.Old.Schema, s.Old.Table))),
		safe(createTriggerSQL(s.New)),
	}
}

func diffTrigger(old, new *catalog.Trigger) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateTriggerStep{Trigger: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropTriggerStep{Trigger: old}}
	case old.Equal(new):
		return nil
	}

	if triggerStructurallyEqual(old, new) {
		return diffComment(new.ID(), old.Comment, new.Comment)
	}

	steps := []Step{&ReplaceTriggerStep{Old: old, New: new}}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}

func triggerStructurallyEqual(old, new *catalog.Trigger) bool {
	o := *old
	n := *new
	o.Comment = ""
	n.Comment = ""
	o.Definition = ""
	n.Definition = ""
	o.Deps = nil
	n.Deps = nil
	return o.Equal(&n)
}
