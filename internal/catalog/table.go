package catalog

// Column is one table column in definition order. DataType is the formatted
// type as produced by format_type, so arrays and custom-type qualification
// survive round-tripping.
type Column struct {
	Name      string
	DataType  string
	NotNull   bool
	Default   string
	Generated string // generation expression for GENERATED ALWAYS AS ... STORED
	Identity  string // "ALWAYS" or "BY DEFAULT" for identity columns
	Collation string
	Comment   string
	Deps      []ObjectID
}

// Equal reports whether two columns are identical for diffing purposes.
func (c *Column) Equal(other *Column) bool {
	return c.Name == other.Name &&
		c.DataType == other.DataType &&
		c.NotNull == other.NotNull &&
		c.Default == other.Default &&
		c.Generated == other.Generated &&
		c.Identity == other.Identity &&
		c.Collation == other.Collation &&
		c.Comment == other.Comment
}

// PrimaryKey is intrinsic to its table so column and key ordering stay
// coherent in rendered CREATE TABLE. All other constraints are separate
// Constraint entities.
type PrimaryKey struct {
	Name    string
	Columns []string
	Comment string
}

// Equal reports whether two primary keys are identical.
func (pk *PrimaryKey) Equal(other *PrimaryKey) bool {
	return pk.Name == other.Name &&
		equalStrings(pk.Columns, other.Columns) &&
		pk.Comment == other.Comment
}

// Table represents a table.
type Table struct {
	Schema     string
	Name       string
	Columns    []Column
	PrimaryKey *PrimaryKey
	RLSEnabled bool
	RLSForced  bool
	Comment    string
	Deps       []ObjectID
}

// ID returns the table's identifier.
func (t *Table) ID() ObjectID { return TableID(t.Schema, t.Name) }

// DependsOn returns the table's dependencies, including per-column
// dependencies such as custom column types and SERIAL sequences.
func (t *Table) DependsOn() []ObjectID {
	deps := append([]ObjectID(nil), t.Deps...)
	for i := range t.Columns {
		deps = append(deps, t.Columns[i].Deps...)
	}
	return dedupeIDs(deps)
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Equal reports whether two tables are identical for diffing purposes.
// Columns compare order-sensitively; column-order policy decides elsewhere
// whether an order-only difference is an error, a warning, or ignored.
func (t *Table) Equal(other *Table) bool {
	if t.Schema != other.Schema || t.Name != other.Name || t.Comment != other.Comment {
		return false
	}
	if t.RLSEnabled != other.RLSEnabled || t.RLSForced != other.RLSForced {
		return false
	}
	if len(t.Columns) != len(other.Columns) {
		return false
	}
	for i := range t.Columns {
		if !t.Columns[i].Equal(&other.Columns[i]) {
			return false
		}
	}
	if (t.PrimaryKey == nil) != (other.PrimaryKey == nil) {
		return false
	}
	if t.PrimaryKey != nil && !t.PrimaryKey.Equal(other.PrimaryKey) {
		return false
	}
	return true
}
