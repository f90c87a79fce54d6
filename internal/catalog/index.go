package catalog

// IndexColumn is one key column or expression of an index.
type IndexColumn struct {
	// Expression is the bare column name or the key expression text.
	Expression string
	// IsExpression distinguishes an expression key from a plain column.
	IsExpression bool
	OpClass      string
	Collation    string
	Desc         bool
	// NullsFirst is nil when the method has no NULLS ordering (hash, gin).
	NullsFirst *bool
}

// Equal reports whether two index columns are identical.
func (c *IndexColumn) Equal(other *IndexColumn) bool {
	if c.Expression != other.Expression || c.IsExpression != other.IsExpression {
		return false
	}
	if c.OpClass != other.OpClass || c.Collation != other.Collation || c.Desc != other.Desc {
		return false
	}
	if (c.NullsFirst == nil) != (other.NullsFirst == nil) {
		return false
	}
	return c.NullsFirst == nil || *c.NullsFirst == *other.NullsFirst
}

// Index represents a standalone index. Indexes backing primary-key, unique,
// or exclusion constraints are not catalog entities; indexes merely
// referenced by foreign keys are.
type Index struct {
	Schema        string
	Name          string
	Table         string
	Method        string // btree, hash, gin, gist, brin, spgist
	Unique        bool
	Columns       []IndexColumn
	Include       []string
	Where         string
	StorageParams []string
	Tablespace    string
	// Concurrent marks indexes that must be created and dropped with
	// CONCURRENTLY, which cannot run inside a transaction.
	Concurrent bool
	Comment    string
	Deps       []ObjectID
}

// ID returns the index's identifier.
func (i *Index) ID() ObjectID { return IndexID(i.Schema, i.Name) }

// DependsOn returns the index's dependencies: at minimum its table.
func (i *Index) DependsOn() []ObjectID {
	deps := append([]ObjectID(nil), i.Deps...)
	deps = append(deps, TableID(i.Schema, i.Table))
	return dedupeIDs(deps)
}

// Equal reports whether two indexes are identical for diffing purposes.
func (i *Index) Equal(other *Index) bool {
	if !i.StructuralEqual(other) {
		return false
	}
	return equalStrings(i.StorageParams, other.StorageParams) && i.Comment == other.Comment
}

// StructuralEqual compares everything that cannot be changed in place. A
// structural difference forces DROP INDEX + CREATE INDEX; storage parameters
// and comments alter in place.
func (i *Index) StructuralEqual(other *Index) bool {
	if i.Schema != other.Schema || i.Name != other.Name || i.Table != other.Table {
		return false
	}
	if i.Method != other.Method || i.Unique != other.Unique || i.Where != other.Where {
		return false
	}
	if i.Tablespace != other.Tablespace || i.Concurrent != other.Concurrent {
		return false
	}
	if !equalStrings(i.Include, other.Include) {
		return false
	}
	if len(i.Columns) != len(other.Columns) {
		return false
	}
	for idx := range i.Columns {
		if !i.Columns[idx].Equal(&other.Columns[idx]) {
			return false
		}
	}
	return true
}
