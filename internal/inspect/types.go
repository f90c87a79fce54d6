package inspect

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadTypes(ctx context.Context, cat *catalog.Catalog) error {
	types := make(map[catalog.ObjectID]*catalog.Type)

	err := i.query(ctx, "types", queryTypes, func(rows *sql.Rows) error {
		var schema, name, typtype string
		var enumValues pq.StringArray
		var isRange bool
		var rangeSubtype, rangeOpClass, rangeCollation, rangeCanonical, rangeSubdiff, comment sql.NullString
		if err := rows.Scan(&schema, &name, &typtype, &enumValues, &isRange,
			&rangeSubtype, &rangeOpClass, &rangeCollation, &rangeCanonical,
			&rangeSubdiff, &comment); err != nil {
			return shapeErrorf("types", "scan: %v", err)
		}

		t := &catalog.Type{
			Schema:  schema,
			Name:    name,
			Comment: nullableString(comment),
		}
		switch typtype {
		case "e":
			t.Kind = catalog.TypeKindEnum
			t.EnumValues = enumValues
		case "c":
			t.Kind = catalog.TypeKindComposite
		case "r":
			t.Kind = catalog.TypeKindRange
			t.Range = &catalog.RangeProperties{
				Subtype:        nullableString(rangeSubtype),
				SubtypeOpClass: nullableString(rangeOpClass),
				Collation:      nullableString(rangeCollation),
				Canonical:      nullableString(rangeCanonical),
				SubtypeDiff:    nullableString(rangeSubdiff),
			}
		default:
			return shapeErrorf("types", "unknown typtype %q on %s.%s", typtype, schema, name)
		}
		types[t.ID()] = t
		cat.Types = append(cat.Types, t)
		return nil
	})
	if err != nil {
		return err
	}

	return i.query(ctx, "composite_attributes", queryCompositeAttributes, func(rows *sql.Rows) error {
		var schema, name, attName, dataType string
		var collation sql.NullString
		var attnum int
		if err := rows.Scan(&schema, &name, &attName, &dataType, &collation, &attnum); err != nil {
			return shapeErrorf("composite_attributes", "scan: %v", err)
		}
		t, ok := types[catalog.TypeID(schema, name)]
		if !ok {
			return shapeErrorf("composite_attributes", "attribute %s of missing type %s.%s", attName, schema, name)
		}
		t.Attributes = append(t.Attributes, catalog.CompositeAttribute{
			Name:      attName,
			DataType:  dataType,
			Collation: nullableString(collation),
		})
		return nil
	})
}

func (i *Inspector) loadDomains(ctx context.Context, cat *catalog.Catalog) error {
	domains := make(map[catalog.ObjectID]*catalog.Domain)

	err := i.query(ctx, "domains", queryDomains, func(rows *sql.Rows) error {
		var schema, name, baseType string
		var notNull bool
		var defaultExpr, collation, baseSchema, baseName, comment sql.NullString
		if err := rows.Scan(&schema, &name, &baseType, &notNull, &defaultExpr,
			&collation, &baseSchema, &baseName, &comment); err != nil {
			return shapeErrorf("domains", "scan: %v", err)
		}
		d := &catalog.Domain{
			Schema:    schema,
			Name:      name,
			BaseType:  baseType,
			NotNull:   notNull,
			Default:   nullableString(defaultExpr),
			Collation: nullableString(collation),
			Comment:   nullableString(comment),
		}
		if bs := nullableString(baseSchema); bs != "" && !catalog.IsSystemSchema(bs) {
			d.Deps = append(d.Deps, catalog.TypeID(bs, nullableString(baseName)))
		}
		domains[d.ID()] = d
		cat.Domains = append(cat.Domains, d)
		return nil
	})
	if err != nil {
		return err
	}

	return i.query(ctx, "domain_constraints", queryDomainConstraints, func(rows *sql.Rows) error {
		var schema, name, conName, definition string
		if err := rows.Scan(&schema, &name, &conName, &definition); err != nil {
			return shapeErrorf("domain_constraints", "scan: %v", err)
		}
		d, ok := domains[catalog.DomainID(schema, name)]
		if !ok {
			return shapeErrorf("domain_constraints", "constraint %s of missing domain %s.%s", conName, schema, name)
		}
		d.Constraints = append(d.Constraints, catalog.DomainConstraint{
			Name:  conName,
			Check: checkClauseFromDefinition(definition),
		})
		return nil
	})
}
