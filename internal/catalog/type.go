package catalog

// TypeKind discriminates user-defined types. Domains are modeled as their own
// entity kind, not as a TypeKind.
type TypeKind string

const (
	TypeKindEnum      TypeKind = "ENUM"
	TypeKindComposite TypeKind = "COMPOSITE"
	TypeKindRange     TypeKind = "RANGE"
)

// CompositeAttribute is one attribute of a composite type, in definition
// order.
type CompositeAttribute struct {
	Name     string
	DataType string
	// Collation is the explicit collation, empty when default.
	Collation string
}

// RangeProperties carries the CREATE TYPE ... AS RANGE parameters.
type RangeProperties struct {
	Subtype        string
	SubtypeOpClass string
	Collation      string
	Canonical      string
	SubtypeDiff    string
}

// Type represents a user-defined enum, composite, or range type.
type Type struct {
	Schema     string
	Name       string
	Kind       TypeKind
	EnumValues []string             // enum types, in definition order
	Attributes []CompositeAttribute // composite types, in definition order
	Range      *RangeProperties     // range types
	Comment    string
	Deps       []ObjectID
}

// ID returns the type's identifier.
func (t *Type) ID() ObjectID { return TypeID(t.Schema, t.Name) }

// DependsOn returns the type's dependencies.
func (t *Type) DependsOn() []ObjectID { return t.Deps }

// Equal reports whether two types are identical for diffing purposes. All
// ordered sub-structures compare order-sensitively.
func (t *Type) Equal(other *Type) bool {
	if t.Schema != other.Schema || t.Name != other.Name || t.Kind != other.Kind || t.Comment != other.Comment {
		return false
	}
	if !equalStrings(t.EnumValues, other.EnumValues) {
		return false
	}
	if len(t.Attributes) != len(other.Attributes) {
		return false
	}
	for i := range t.Attributes {
		if t.Attributes[i] != other.Attributes[i] {
			return false
		}
	}
	if (t.Range == nil) != (other.Range == nil) {
		return false
	}
	if t.Range != nil && *t.Range != *other.Range {
		return false
	}
	return true
}

// DomainConstraint is one named CHECK constraint on a domain. Constraints are
// diffed by name; an expression change under the same name is a drop and
// re-add of that name.
type DomainConstraint struct {
	Name  string
	Check string
}

// Domain represents a domain over a base type.
type Domain struct {
	Schema      string
	Name        string
	BaseType    string
	NotNull     bool
	Default     string
	Collation   string
	Constraints []DomainConstraint
	Comment     string
	Deps        []ObjectID
}

// ID returns the domain's identifier.
func (d *Domain) ID() ObjectID { return DomainID(d.Schema, d.Name) }

// DependsOn returns the domain's dependencies.
func (d *Domain) DependsOn() []ObjectID { return d.Deps }

// Equal reports whether two domains are identical for diffing purposes.
func (d *Domain) Equal(other *Domain) bool {
	if d.Schema != other.Schema || d.Name != other.Name || d.BaseType != other.BaseType {
		return false
	}
	if d.NotNull != other.NotNull || d.Default != other.Default || d.Collation != other.Collation || d.Comment != other.Comment {
		return false
	}
	if len(d.Constraints) != len(other.Constraints) {
		return false
	}
	for i := range d.Constraints {
		if d.Constraints[i] != other.Constraints[i] {
			return false
		}
	}
	return true
}

// Constraint returns the named domain constraint, or nil.
func (d *Domain) Constraint(name string) *DomainConstraint {
	for i := range d.Constraints {
		if d.Constraints[i].Name == name {
			return &d.Constraints[i]
		}
	}
	return nil
}
