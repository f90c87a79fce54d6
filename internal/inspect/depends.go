package inspect

import (
	"context"
	"database/sql"

	"github.com/pgmt/pgmt/internal/catalog"
)

// loadDepends walks pg_depend last, once every entity exists, and records
// forward edges. The SQL already applied the identifier rewrites: array
// types resolve to their element type, extension-owned referents resolve to
// the extension, and relation row-types resolve to the table or view.
func (i *Inspector) loadDepends(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "depends", queryDepends, func(rows *sql.Rows) error {
		var objKind, objName, refKind, refName string
		var objSchema, objArgs, refSchema, refArgs sql.NullString
		if err := rows.Scan(&objKind, &objSchema, &objName, &objArgs,
			&refKind, &refSchema, &refName, &refArgs); err != nil {
			return shapeErrorf("depends", "scan: %v", err)
		}

		from, ok := dependIdentifier(objKind, nullableString(objSchema), objName, nullableString(objArgs))
		if !ok {
			return shapeErrorf("depends", "unmappable dependent kind %q", objKind)
		}
		to, ok := dependIdentifier(refKind, nullableString(refSchema), refName, nullableString(refArgs))
		if !ok {
			return shapeErrorf("depends", "unmappable referenced kind %q", refKind)
		}

		// Edges into system objects are deliberately dangling; edges whose
		// dependent is unknown (e.g. a constraint-backing index) are noise.
		if catalog.IsSystemID(from) || catalog.IsSystemID(to) {
			return nil
		}
		if !cat.Has(from) || !cat.Has(to) {
			return nil
		}
		cat.AddDependency(from, to)
		return nil
	})
}

func dependIdentifier(kind, schema, name, args string) (catalog.ObjectID, bool) {
	switch kind {
	case "schema":
		return catalog.SchemaID(name), true
	case "extension":
		return catalog.ExtensionID(name), true
	case "table":
		return catalog.TableID(schema, name), true
	case "view":
		return catalog.ViewID(schema, name), true
	case "sequence":
		return catalog.SequenceID(schema, name), true
	case "index":
		return catalog.IndexID(schema, name), true
	case "type":
		return catalog.TypeID(schema, name), true
	case "domain":
		return catalog.DomainID(schema, name), true
	case "function":
		return catalog.FunctionID(schema, name, args), true
	case "aggregate":
		return catalog.AggregateID(schema, name, args), true
	default:
		return catalog.ObjectID{}, false
	}
}
