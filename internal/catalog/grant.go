package catalog

import "sort"

// Grant represents one grantee's privilege set on one object, as granted by a
// single grantor. The grantor does not participate in identity or equality.
type Grant struct {
	Object          ObjectID
	Grantee         string // role name, or "PUBLIC"
	Privileges      []string
	WithGrantOption bool
	// ObjectOwner is the owning role of the target object, used to recognize
	// and suppress implicit owner grants before diffing.
	ObjectOwner string
}

// ID returns the grant's identifier.
func (g *Grant) ID() ObjectID {
	return GrantID(g.Object, g.Grantee, g.SortedPrivileges())
}

// DependsOn returns the grant's dependencies: the granted object.
func (g *Grant) DependsOn() []ObjectID { return []ObjectID{g.Object} }

// SortedPrivileges returns the privilege set in canonical order.
func (g *Grant) SortedPrivileges() []string {
	privs := append([]string(nil), g.Privileges...)
	sort.Strings(privs)
	return privs
}

// Equal reports whether two grants are identical for diffing purposes.
// Privilege sets compare as sets.
func (g *Grant) Equal(other *Grant) bool {
	if g.Object != other.Object || g.Grantee != other.Grantee || g.WithGrantOption != other.WithGrantOption {
		return false
	}
	return equalStrings(g.SortedPrivileges(), other.SortedPrivileges())
}

// defaultOwnerPrivileges is the full privilege set PostgreSQL grants an
// object's owner implicitly, per kind. A grant matching this exactly is
// diff noise from a freshly created object, not a declared grant.
var defaultOwnerPrivileges = map[Kind][]string{
	KindTable:    {"DELETE", "INSERT", "REFERENCES", "SELECT", "TRIGGER", "TRUNCATE", "UPDATE"},
	KindView:     {"DELETE", "INSERT", "REFERENCES", "SELECT", "TRIGGER", "TRUNCATE", "UPDATE"},
	KindSequence: {"SELECT", "UPDATE", "USAGE"},
	KindSchema:   {"CREATE", "USAGE"},
	KindFunction: {"EXECUTE"},
	KindType:     {"USAGE"},
	KindDomain:   {"USAGE"},
}

// IsImplicitOwnerGrant reports whether this grant is the owner's default
// privilege set on its own object. Such grants are filtered out before
// diffing so owner defaults never show up as drift.
func (g *Grant) IsImplicitOwnerGrant() bool {
	if g.Grantee == "" || g.Grantee != g.ObjectOwner {
		return false
	}
	want, ok := defaultOwnerPrivileges[g.Object.Kind]
	if !ok {
		return false
	}
	return equalStrings(g.SortedPrivileges(), want)
}
