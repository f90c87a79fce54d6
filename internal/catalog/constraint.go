package catalog

// ConstraintType discriminates table constraints. Primary keys are intrinsic
// to Table and never appear as Constraint entities.
type ConstraintType string

const (
	ConstraintTypeForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintTypeUnique     ConstraintType = "UNIQUE"
	ConstraintTypeCheck      ConstraintType = "CHECK"
	ConstraintTypeExclusion  ConstraintType = "EXCLUDE"
)

// Constraint represents a table constraint other than the primary key.
type Constraint struct {
	Schema string
	Table  string
	Name   string
	Type   ConstraintType

	Columns []string // FK and UNIQUE key columns, in constraint order

	// Foreign key fields.
	RefSchema  string
	RefTable   string
	RefColumns []string
	OnDelete   string // NO ACTION, RESTRICT, CASCADE, SET NULL, SET DEFAULT
	OnUpdate   string

	// Check fields.
	CheckClause string

	// Exclusion fields.
	ExclusionMethod   string   // access method, usually gist
	ExclusionElements []string // "expr WITH operator" pairs, in order
	ExclusionWhere    string

	Deferrable        bool
	InitiallyDeferred bool
	Comment           string
	Deps              []ObjectID
}

// ID returns the constraint's identifier.
func (c *Constraint) ID() ObjectID { return ConstraintID(c.Schema, c.Table, c.Name) }

// DependsOn returns the constraint's dependencies: its table, and for foreign
// keys the referenced table.
func (c *Constraint) DependsOn() []ObjectID {
	deps := append([]ObjectID(nil), c.Deps...)
	deps = append(deps, TableID(c.Schema, c.Table))
	if c.Type == ConstraintTypeForeignKey && c.RefTable != "" {
		refSchema := c.RefSchema
		if refSchema == "" {
			refSchema = c.Schema
		}
		deps = append(deps, TableID(refSchema, c.RefTable))
	}
	return dedupeIDs(deps)
}

// Equal reports whether two constraints are identical for diffing purposes.
// Any difference forces DROP CONSTRAINT + ADD CONSTRAINT; there is no
// in-place constraint ALTER.
func (c *Constraint) Equal(other *Constraint) bool {
	if c.Schema != other.Schema || c.Table != other.Table || c.Name != other.Name || c.Type != other.Type {
		return false
	}
	if !equalStrings(c.Columns, other.Columns) || !equalStrings(c.RefColumns, other.RefColumns) {
		return false
	}
	if c.RefSchema != other.RefSchema || c.RefTable != other.RefTable {
		return false
	}
	if c.OnDelete != other.OnDelete || c.OnUpdate != other.OnUpdate {
		return false
	}
	if c.CheckClause != other.CheckClause {
		return false
	}
	if c.ExclusionMethod != other.ExclusionMethod || c.ExclusionWhere != other.ExclusionWhere {
		return false
	}
	if !equalStrings(c.ExclusionElements, other.ExclusionElements) {
		return false
	}
	if c.Deferrable != other.Deferrable || c.InitiallyDeferred != other.InitiallyDeferred {
		return false
	}
	return c.Comment == other.Comment
}
