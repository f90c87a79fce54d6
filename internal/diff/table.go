package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateTableStep creates a table with its columns and primary key. Other
// constraints, indexes, and triggers are separate entities with their own
// steps.
type CreateTableStep struct {
	Table *catalog.Table
}

func (s *CreateTableStep) Object() catalog.ObjectID { return s.Table.ID() }
func (s *CreateTableStep) Operation() Operation     { return OpCreate }

func (s *CreateTableStep) Render() []RenderedStatement {
	t := s.Table
	name := qualified(t.Schema, t.Name)

	var defs []string
	for i := range t.Columns {
		defs = append(defs, columnDef(&t.Columns[i]))
	}
	if pk := t.PrimaryKey; pk != nil {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", ident(pk.Name), identList(pk.Columns)))
	}

	out := []RenderedStatement{safe(fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", name, strings.Join(defs, ",\n    ")))}
	if t.RLSEnabled {
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", name)))
	}
	if t.RLSForced {
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY;", name)))
	}
	return out
}

// columnDef renders one column clause of CREATE TABLE.
func columnDef(c *catalog.Column) string {
	var b strings.Builder
	b.WriteString(ident(c.Name))
	b.WriteString(" ")
	b.WriteString(c.DataType)
	if c.Collation != "" {
		b.WriteString(" COLLATE " + ident(c.Collation))
	}
	if c.Generated != "" {
		fmt.Fprintf(&b, " GENERATED ALWAYS AS (%s) STORED", c.Generated)
	} else if c.Identity != "" {
		fmt.Fprintf(&b, " GENERATED %s AS IDENTITY", c.Identity)
	} else if c.Default != "" {
		b.WriteString(" DEFAULT " + c.Default)
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// DropTableStep drops a table and its data.
type DropTableStep struct {
	Table *catalog.Table
}

func (s *DropTableStep) Object() catalog.ObjectID { return s.Table.ID() }
func (s *DropTableStep) Operation() Operation     { return OpDrop }

func (s *DropTableStep) Render() []RenderedStatement {
	return []RenderedStatement{destructive("DROP TABLE " + qualified(s.Table.Schema, s.Table.Name) + ";")}
}

// columnTypeChange is one ALTER COLUMN ... TYPE action.
type columnTypeChange struct {
	Column  string
	NewType string
}

// columnDefaultChange sets or drops a column default.
type columnDefaultChange struct {
	Column  string
	Default string // empty drops
}

// columnNullabilityChange flips NOT NULL.
type columnNullabilityChange struct {
	Column  string
	NotNull bool
}

// columnIdentityChange adjusts or removes an identity.
type columnIdentityChange struct {
	Column   string
	Identity string // "ALWAYS", "BY DEFAULT", or empty to drop
	Existed  bool   // whether the column had an identity before
}

// AlterTableStep applies the in-place half of a table diff. Column comments
// travel here as well so they sort with the table.
type AlterTableStep struct {
	Table *catalog.Table

	DropColumns        []catalog.Column
	AddColumns         []catalog.Column
	TypeChanges        []columnTypeChange
	DefaultChanges     []columnDefaultChange
	NullabilityChanges []columnNullabilityChange
	IdentityChanges    []columnIdentityChange
	// Recreated columns had their generation expression changed; PostgreSQL
	// cannot alter a generation expression in place.
	RecreateColumns []catalog.Column

	DropPrimaryKey *catalog.PrimaryKey
	AddPrimaryKey  *catalog.PrimaryKey

	EnableRLS  bool
	DisableRLS bool
	ForceRLS   bool
	UnforceRLS bool

	ColumnComments []CommentStep
}

func (s *AlterTableStep) Object() catalog.ObjectID { return s.Table.ID() }
func (s *AlterTableStep) Operation() Operation     { return OpAlter }

func (s *AlterTableStep) empty() bool { return len(s.Render()) == 0 }

func (s *AlterTableStep) Render() []RenderedStatement {
	name := qualified(s.Table.Schema, s.Table.Name)
	var out []RenderedStatement
	alter := func(stmt RenderedStatement) { out = append(out, stmt) }

	if s.DropPrimaryKey != nil {
		alter(destructive(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", name, ident(s.DropPrimaryKey.Name))))
	}
	for _, c := range s.DropColumns {
		alter(destructive(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", name, ident(c.Name))))
	}
	for _, c := range s.RecreateColumns {
		alter(destructive(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", name, ident(c.Name))))
		alter(safe(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", name, columnDef(&c))))
	}
	for _, tc := range s.TypeChanges {
		alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;", name, ident(tc.Column), tc.NewType)))
	}
	for _, dc := range s.DefaultChanges {
		if dc.Default == "" {
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", name, ident(dc.Column))))
		} else {
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", name, ident(dc.Column), dc.Default)))
		}
	}
	for _, nc := range s.NullabilityChanges {
		if nc.NotNull {
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", name, ident(nc.Column))))
		} else {
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", name, ident(nc.Column))))
		}
	}
	for _, ic := range s.IdentityChanges {
		switch {
		case ic.Identity == "":
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP IDENTITY;", name, ident(ic.Column))))
		case ic.Existed:
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET GENERATED %s;", name, ident(ic.Column), ic.Identity)))
		default:
			alter(safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s ADD GENERATED %s AS IDENTITY;", name, ident(ic.Column), ic.Identity)))
		}
	}
	for _, c := range s.AddColumns {
		alter(safe(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", name, columnDef(&c))))
	}
	if s.AddPrimaryKey != nil {
		alter(safe(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
			name, ident(s.AddPrimaryKey.Name), identList(s.AddPrimaryKey.Columns))))
	}
	if s.EnableRLS {
		alter(safe(fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", name)))
	}
	if s.DisableRLS {
		alter(safe(fmt.Sprintf("ALTER TABLE %s DISABLE ROW LEVEL SECURITY;", name)))
	}
	if s.ForceRLS {
		alter(safe(fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY;", name)))
	}
	if s.UnforceRLS {
		alter(safe(fmt.Sprintf("ALTER TABLE %s NO FORCE ROW LEVEL SECURITY;", name)))
	}
	for i := range s.ColumnComments {
		out = append(out, s.ColumnComments[i].Render()...)
	}
	return out
}

// tableDiffer carries the column-order policy.
type tableDiffer struct {
	policy ColumnOrderPolicy
}

func (d tableDiffer) diff(old, new *catalog.Table) ([]Step, error) {
	switch {
	case old == nil && new == nil:
		return nil, nil
	case old == nil:
		steps := []Step{&CreateTableStep{Table: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		for i := range new.Columns {
			if c := &new.Columns[i]; c.Comment != "" {
				steps = append(steps, &CommentStep{Target: new.ID(), Column: c.Name, Comment: c.Comment})
			}
		}
		if new.PrimaryKey != nil && new.PrimaryKey.Comment != "" {
			steps = append(steps, &CommentStep{
				Target:  catalog.ConstraintID(new.Schema, new.Name, new.PrimaryKey.Name),
				Comment: new.PrimaryKey.Comment,
			})
		}
		return steps, nil
	case new == nil:
		return []Step{&DropTableStep{Table: old}}, nil
	case old.Equal(new):
		return nil, nil
	}

	if err := d.checkColumnOrder(old, new); err != nil {
		return nil, err
	}

	alter := &AlterTableStep{Table: new}

	oldCols := make(map[string]*catalog.Column, len(old.Columns))
	for i := range old.Columns {
		oldCols[old.Columns[i].Name] = &old.Columns[i]
	}
	newCols := make(map[string]*catalog.Column, len(new.Columns))
	for i := range new.Columns {
		newCols[new.Columns[i].Name] = &new.Columns[i]
	}

	for i := range old.Columns {
		if _, ok := newCols[old.Columns[i].Name]; !ok {
			alter.DropColumns = append(alter.DropColumns, old.Columns[i])
		}
	}

	for i := range new.Columns {
		nc := &new.Columns[i]
		oc, ok := oldCols[nc.Name]
		if !ok {
			// New columns append at the end, preserving declared order.
			alter.AddColumns = append(alter.AddColumns, *nc)
			if nc.Comment != "" {
				alter.ColumnComments = append(alter.ColumnComments, CommentStep{Target: new.ID(), Column: nc.Name, Comment: nc.Comment})
			}
			continue
		}
		d.diffColumn(alter, oc, nc)
	}

	d.diffPrimaryKey(alter, old, new)

	if !old.RLSEnabled && new.RLSEnabled {
		alter.EnableRLS = true
	}
	if old.RLSEnabled && !new.RLSEnabled {
		alter.DisableRLS = true
	}
	if !old.RLSForced && new.RLSForced {
		alter.ForceRLS = true
	}
	if old.RLSForced && !new.RLSForced {
		alter.UnforceRLS = true
	}

	var steps []Step
	if !alter.empty() {
		steps = append(steps, alter)
	}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps, nil
}

func (d tableDiffer) diffColumn(alter *AlterTableStep, oc, nc *catalog.Column) {
	// A generation expression cannot change in place.
	if oc.Generated != nc.Generated {
		alter.RecreateColumns = append(alter.RecreateColumns, *nc)
		return
	}

	if oc.DataType != nc.DataType || oc.Collation != nc.Collation {
		newType := nc.DataType
		if nc.Collation != "" {
			newType += " COLLATE " + ident(nc.Collation)
		}
		alter.TypeChanges = append(alter.TypeChanges, columnTypeChange{Column: nc.Name, NewType: newType})
	}
	if oc.Default != nc.Default && nc.Identity == "" {
		alter.DefaultChanges = append(alter.DefaultChanges, columnDefaultChange{Column: nc.Name, Default: nc.Default})
	}
	if oc.NotNull != nc.NotNull {
		alter.NullabilityChanges = append(alter.NullabilityChanges, columnNullabilityChange{Column: nc.Name, NotNull: nc.NotNull})
	}
	if oc.Identity != nc.Identity {
		alter.IdentityChanges = append(alter.IdentityChanges, columnIdentityChange{
			Column:   nc.Name,
			Identity: nc.Identity,
			Existed:  oc.Identity != "",
		})
	}
	if oc.Comment != nc.Comment {
		alter.ColumnComments = append(alter.ColumnComments, CommentStep{Target: alter.Table.ID(), Column: nc.Name, Comment: nc.Comment})
	}
}

func (d tableDiffer) diffPrimaryKey(alter *AlterTableStep, old, new *catalog.Table) {
	opk, npk := old.PrimaryKey, new.PrimaryKey
	switch {
	case opk == nil && npk == nil:
		return
	case opk == nil:
		alter.AddPrimaryKey = npk
	case npk == nil:
		alter.DropPrimaryKey = opk
	case opk.Name != npk.Name || !stringsEqual(opk.Columns, npk.Columns):
		alter.DropPrimaryKey = opk
		alter.AddPrimaryKey = npk
	case opk.Comment != npk.Comment:
		alter.ColumnComments = append(alter.ColumnComments, CommentStep{
			Target:  catalog.ConstraintID(new.Schema, new.Name, npk.Name),
			Comment: npk.Comment,
		})
	}
}

// checkColumnOrder enforces the column-order policy for columns present in
// both tables. Under relaxed nothing is checked; under warn a violation is
// accepted silently by the core (the caller owns reporting); under strict it
// is an error.
func (d tableDiffer) checkColumnOrder(old, new *catalog.Table) error {
	if d.policy == ColumnOrderRelaxed {
		return nil
	}

	newNames := make(map[string]bool, len(new.Columns))
	for i := range new.Columns {
		newNames[new.Columns[i].Name] = true
	}
	var oldShared []string
	for i := range old.Columns {
		if newNames[old.Columns[i].Name] {
			oldShared = append(oldShared, old.Columns[i].Name)
		}
	}
	oldNames := make(map[string]bool, len(old.Columns))
	for i := range old.Columns {
		oldNames[old.Columns[i].Name] = true
	}
	var newShared []string
	for i := range new.Columns {
		if oldNames[new.Columns[i].Name] {
			newShared = append(newShared, new.Columns[i].Name)
		}
	}

	if stringsEqual(oldShared, newShared) {
		return nil
	}
	if d.policy == ColumnOrderStrict {
		return &ColumnOrderError{
			Table:    new.ID(),
			Expected: newShared,
			Actual:   oldShared,
		}
	}
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
