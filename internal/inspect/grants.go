package inspect

import (
	"context"
	"database/sql"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadGrants(ctx context.Context, cat *catalog.Catalog) error {
	// aclexplode emits one row per privilege; rows collapse into one Grant
	// per (object, grantee, grant option) with the privilege union.
	type grantKey struct {
		object  catalog.ObjectID
		grantee string
		option  bool
	}
	merged := make(map[grantKey]*catalog.Grant)
	var order []grantKey

	err := i.query(ctx, "grants", queryGrants, func(rows *sql.Rows) error {
		var kind, name, args, owner, grantee, privilege string
		var schema sql.NullString
		var grantable bool
		if err := rows.Scan(&kind, &schema, &name, &args, &owner, &grantee, &privilege, &grantable); err != nil {
			return shapeErrorf("grants", "scan: %v", err)
		}

		var object catalog.ObjectID
		switch kind {
		case "table":
			object = catalog.TableID(schema.String, name)
		case "view":
			object = catalog.ViewID(schema.String, name)
		case "sequence":
			object = catalog.SequenceID(schema.String, name)
		case "schema":
			object = catalog.SchemaID(name)
		case "function":
			object = catalog.FunctionID(schema.String, name, args)
		case "type":
			object = catalog.TypeID(schema.String, name)
		case "domain":
			object = catalog.DomainID(schema.String, name)
		default:
			return shapeErrorf("grants", "unknown grant object kind %q", kind)
		}

		key := grantKey{object: object, grantee: grantee, option: grantable}
		g, ok := merged[key]
		if !ok {
			g = &catalog.Grant{
				Object:          object,
				Grantee:         grantee,
				WithGrantOption: grantable,
				ObjectOwner:     owner,
			}
			merged[key] = g
			order = append(order, key)
		}
		g.Privileges = append(g.Privileges, privilege)
		return nil
	})
	if err != nil {
		return err
	}

	// Implicit owner grants are catalog noise from object creation, not
	// declared grants; they are filtered before any diffing can see them.
	for _, key := range order {
		g := merged[key]
		if g.IsImplicitOwnerGrant() {
			continue
		}
		cat.Grants = append(cat.Grants, g)
	}
	return nil
}
