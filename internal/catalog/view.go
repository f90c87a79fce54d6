package catalog

// ViewColumn is one output column of a view with its inferred type.
type ViewColumn struct {
	Name     string
	DataType string
}

// View represents a view. Definition is the body as reconstructed by
// pg_get_viewdef, so whitespace and casing are already normalized by the
// server.
type View struct {
	Schema          string
	Name            string
	Definition      string
	Columns         []ViewColumn
	SecurityInvoker bool
	SecurityBarrier bool
	Comment         string
	Deps            []ObjectID
}

// ID returns the view's identifier.
func (v *View) ID() ObjectID { return ViewID(v.Schema, v.Name) }

// DependsOn returns the view's dependencies.
func (v *View) DependsOn() []ObjectID { return v.Deps }

// Equal reports whether two views are identical for diffing purposes.
func (v *View) Equal(other *View) bool {
	if v.Schema != other.Schema || v.Name != other.Name || v.Definition != other.Definition {
		return false
	}
	if v.SecurityInvoker != other.SecurityInvoker || v.SecurityBarrier != other.SecurityBarrier {
		return false
	}
	if v.Comment != other.Comment {
		return false
	}
	if len(v.Columns) != len(other.Columns) {
		return false
	}
	for i := range v.Columns {
		if v.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// ReplaceCompatible reports whether CREATE OR REPLACE VIEW can transform the
// old view into this one: every old output column must still exist at the
// same ordinal with an identical type. Appending columns is compatible.
func (v *View) ReplaceCompatible(old *View) bool {
	if len(v.Columns) < len(old.Columns) {
		return false
	}
	for i := range old.Columns {
		if v.Columns[i] != old.Columns[i] {
			return false
		}
	}
	return true
}
