package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateSequenceStep creates a sequence. Ownership is not part of the CREATE:
// the owner table may not exist yet at this phase, so ownership lands in a
// separate SetSequenceOwnershipStep ordered after table creation.
type CreateSequenceStep struct {
	Sequence *catalog.Sequence
}

func (s *CreateSequenceStep) Object() catalog.ObjectID { return s.Sequence.ID() }
func (s *CreateSequenceStep) Operation() Operation     { return OpCreate }

func (s *CreateSequenceStep) Render() []RenderedStatement {
	seq := s.Sequence
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE SEQUENCE %s", qualified(seq.Schema, seq.Name))
	if seq.DataType != "" && seq.DataType != "bigint" {
		b.WriteString(" AS " + seq.DataType)
	}
	if seq.Increment != 1 {
		fmt.Fprintf(&b, " INCREMENT BY %d", seq.Increment)
	}
	if seq.MinValue != nil {
		fmt.Fprintf(&b, " MINVALUE %d", *seq.MinValue)
	}
	if seq.MaxValue != nil {
		fmt.Fprintf(&b, " MAXVALUE %d", *seq.MaxValue)
	}
	if seq.Start != 1 {
		fmt.Fprintf(&b, " START WITH %d", seq.Start)
	}
	if seq.Cache > 1 {
		fmt.Fprintf(&b, " CACHE %d", seq.Cache)
	}
	if seq.Cycle {
		b.WriteString(" CYCLE")
	}
	b.WriteString(";")
	return []RenderedStatement{safe(b.String())}
}

// DropSequenceStep drops a sequence. The current sequence value is lost, so
// the drop is destructive.
type DropSequenceStep struct {
	Sequence *catalog.Sequence
}

func (s *DropSequenceStep) Object() catalog.ObjectID { return s.Sequence.ID() }
func (s *DropSequenceStep) Operation() Operation     { return OpDrop }

func (s *DropSequenceStep) Render() []RenderedStatement {
	return []RenderedStatement{destructive("DROP SEQUENCE " + qualified(s.Sequence.Schema, s.Sequence.Name) + ";")}
}

// AlterSequenceStep adjusts sequence parameters in place.
type AlterSequenceStep struct {
	Old *catalog.Sequence
	New *catalog.Sequence
}

func (s *AlterSequenceStep) Object() catalog.ObjectID { return s.New.ID() }
func (s *AlterSequenceStep) Operation() Operation     { return OpAlter }

func (s *AlterSequenceStep) Render() []RenderedStatement {
	old, new := s.Old, s.New
	var parts []string
	if old.DataType != new.DataType {
		parts = append(parts, "AS "+new.DataType)
	}
	if old.Increment != new.Increment {
		parts = append(parts, fmt.Sprintf("INCREMENT BY %d", new.Increment))
	}
	if !int64PtrEqual(old.MinValue, new.MinValue) {
		if new.MinValue == nil {
			parts = append(parts, "NO MINVALUE")
		} else {
			parts = append(parts, fmt.Sprintf("MINVALUE %d", *new.MinValue))
		}
	}
	if !int64PtrEqual(old.MaxValue, new.MaxValue) {
		if new.MaxValue == nil {
			parts = append(parts, "NO MAXVALUE")
		} else {
			parts = append(parts, fmt.Sprintf("MAXVALUE %d", *new.MaxValue))
		}
	}
	if old.Start != new.Start {
		parts = append(parts, fmt.Sprintf("START WITH %d", new.Start))
	}
	if old.Cache != new.Cache {
		parts = append(parts, fmt.Sprintf("CACHE %d", new.Cache))
	}
	if old.Cycle != new.Cycle {
		if new.Cycle {
			parts = append(parts, "CYCLE")
		} else {
			parts = append(parts, "NO CYCLE")
		}
	}
	if len(parts) == 0 {
		return nil
	}
	sql := fmt.Sprintf("ALTER SEQUENCE %s %s;", qualified(new.Schema, new.Name), strings.Join(parts, " "))
	return []RenderedStatement{safe(sql)}
}

// SetSequenceOwnershipStep ties a sequence's lifetime to a table column, or
// detaches it.
type SetSequenceOwnershipStep struct {
	Sequence *catalog.Sequence
}

func (s *SetSequenceOwnershipStep) Object() catalog.ObjectID { return s.Sequence.ID() }
func (s *SetSequenceOwnershipStep) Operation() Operation     { return OpSetOwnership }

func (s *SetSequenceOwnershipStep) Render() []RenderedStatement {
	seq := s.Sequence
	owner := "NONE"
	if seq.OwnedByTable != "" {
		owner = qualified(seq.Schema, seq.OwnedByTable) + "." + ident(seq.OwnedByColumn)
	}
	sql := fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s;", qualified(seq.Schema, seq.Name), owner)
	return []RenderedStatement{safe(sql)}
}

func diffSequence(old, new *catalog.Sequence) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateSequenceStep{Sequence: new}}
		if new.OwnedByTable != "" {
			steps = append(steps, &SetSequenceOwnershipStep{Sequence: new})
		}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropSequenceStep{Sequence: old}}
	case old.Equal(new):
		return nil
	}

	var steps []Step
	alter := &AlterSequenceStep{Old: old, New: new}
	if len(alter.Render()) > 0 {
		steps = append(steps, alter)
	}
	if old.OwnedByTable != new.OwnedByTable || old.OwnedByColumn != new.OwnedByColumn {
		steps = append(steps, &SetSequenceOwnershipStep{Sequence: new})
	}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}

func int64PtrEqual(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
