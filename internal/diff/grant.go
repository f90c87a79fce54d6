package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// GrantStep grants privileges to a role on one object.
type GrantStep struct {
	Grant      *catalog.Grant
	Privileges []string
}

func (s *GrantStep) Object() catalog.ObjectID { return s.Grant.ID() }
func (s *GrantStep) Operation() Operation     { return OpCreate }

func (s *GrantStep) Render() []RenderedStatement {
	sql := fmt.Sprintf("GRANT %s ON %s TO %s",
		strings.Join(s.Privileges, ", "), grantTarget(s.Grant.Object), grantee(s.Grant.Grantee))
	if s.Grant.WithGrantOption {
		sql += " WITH GRANT OPTION"
	}
	return []RenderedStatement{safe(sql + ";")}
}

// RevokeStep revokes privileges from a role on one object.
type RevokeStep struct {
	Grant      *catalog.Grant
	Privileges []string
}

func (s *RevokeStep) Object() catalog.ObjectID { return s.Grant.ID() }
func (s *RevokeStep) Operation() Operation     { return OpDrop }

func (s *RevokeStep) Render() []RenderedStatement {
	sql := fmt.Sprintf("REVOKE %s ON %s FROM %s;",
		strings.Join(s.Privileges, ", "), grantTarget(s.Grant.Object), grantee(s.Grant.Grantee))
	return []RenderedStatement{safe(sql)}
}

func grantee(role string) string {
	if role == "PUBLIC" {
		return "PUBLIC"
	}
	return ident(role)
}

func grantTarget(id catalog.ObjectID) string {
	switch id.Kind {
	case catalog.KindSchema:
		return "SCHEMA " + ident(id.Name)
	case catalog.KindTable, catalog.KindView:
		return "TABLE " + qualified(id.Schema, id.Name)
	case catalog.KindSequence:
		return "SEQUENCE " + qualified(id.Schema, id.Name)
	case catalog.KindFunction:
		return fmt.Sprintf("FUNCTION %s(%s)", qualified(id.Schema, id.Name), id.Args)
	case catalog.KindType:
		return "TYPE " + qualified(id.Schema, id.Name)
	case catalog.KindDomain:
		return "DOMAIN " + qualified(id.Schema, id.Name)
	default:
		return id.String()
	}
}

// diffGrants pairs grants by (object, grantee, grant option) rather than by
// full identity so privilege changes render as incremental GRANT/REVOKE.
// The grantor never participates.
func diffGrants(old, new []*catalog.Grant) []Step {
	type key struct {
		object  catalog.ObjectID
		grantee string
		option  bool
	}
	// The loader already filters implicit owner grants; filtering again here
	// keeps hand-built catalogs honest too.
	old = declaredGrants(old)
	new = declaredGrants(new)

	oldByKey := make(map[key]*catalog.Grant, len(old))
	for _, g := range old {
		oldByKey[key{g.Object, g.Grantee, g.WithGrantOption}] = g
	}
	newByKey := make(map[key]*catalog.Grant, len(new))
	for _, g := range new {
		newByKey[key{g.Object, g.Grantee, g.WithGrantOption}] = g
	}

	var steps []Step

	for _, g := range old {
		k := key{g.Object, g.Grantee, g.WithGrantOption}
		ng := newByKey[k]
		revoked := privilegeDifference(g.SortedPrivileges(), sortedPrivilegesOf(ng))
		if len(revoked) > 0 {
			steps = append(steps, &RevokeStep{Grant: g, Privileges: revoked})
		}
	}
	for _, g := range new {
		k := key{g.Object, g.Grantee, g.WithGrantOption}
		og := oldByKey[k]
		granted := privilegeDifference(g.SortedPrivileges(), sortedPrivilegesOf(og))
		if len(granted) > 0 {
			steps = append(steps, &GrantStep{Grant: g, Privileges: granted})
		}
	}
	return steps
}

func declaredGrants(grants []*catalog.Grant) []*catalog.Grant {
	out := grants[:0:0]
	for _, g := range grants {
		if !g.IsImplicitOwnerGrant() {
			out = append(out, g)
		}
	}
	return out
}

func sortedPrivilegesOf(g *catalog.Grant) []string {
	if g == nil {
		return nil
	}
	return g.SortedPrivileges()
}

// privilegeDifference returns the privileges in a that are not in b; both
// inputs are sorted.
func privilegeDifference(a, b []string) []string {
	have := make(map[string]bool, len(b))
	for _, p := range b {
		have[p] = true
	}
	var out []string
	for _, p := range a {
		if !have[p] {
			out = append(out, p)
		}
	}
	return out
}
