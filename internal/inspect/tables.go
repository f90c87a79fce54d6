package inspect

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadTables(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "tables", queryTables, func(rows *sql.Rows) error {
		var schema, name string
		var rlsEnabled, rlsForced bool
		var comment sql.NullString
		if err := rows.Scan(&schema, &name, &rlsEnabled, &rlsForced, &comment); err != nil {
			return shapeErrorf("tables", "scan: %v", err)
		}
		cat.Tables = append(cat.Tables, &catalog.Table{
			Schema:     schema,
			Name:       name,
			RLSEnabled: rlsEnabled,
			RLSForced:  rlsForced,
			Comment:    nullableString(comment),
		})
		return nil
	})
}

// serialDefaultRe matches the default expression a SERIAL column carries.
// The capture is the (possibly schema-qualified, possibly quoted) sequence.
var serialDefaultRe = regexp.MustCompile(`^nextval\('((?:"[^"]*"|[^'.])+(?:\.(?:"[^"]*"|[^'.])+)?)'::regclass\)$`)

func (i *Inspector) loadColumns(ctx context.Context, cat *catalog.Catalog) error {
	tables := make(map[catalog.ObjectID]*catalog.Table, len(cat.Tables))
	for _, t := range cat.Tables {
		tables[t.ID()] = t
	}

	return i.query(ctx, "columns", queryColumns, func(rows *sql.Rows) error {
		var schema, table, name, dataType string
		var attnum int
		var notNull bool
		var defaultExpr, generated, identity, collation, typeSchema, typeName, typeKind, comment sql.NullString
		if err := rows.Scan(&schema, &table, &name, &attnum, &dataType, &notNull,
			&defaultExpr, &generated, &identity, &collation, &typeSchema, &typeName, &typeKind, &comment); err != nil {
			return shapeErrorf("columns", "scan: %v", err)
		}

		t, ok := tables[catalog.TableID(schema, table)]
		if !ok {
			return shapeErrorf("columns", "column %s.%s.%s has no table row", schema, table, name)
		}

		col := catalog.Column{
			Name:      name,
			DataType:  dataType,
			NotNull:   notNull,
			Collation: nullableString(collation),
			Comment:   nullableString(comment),
		}

		switch nullableString(generated) {
		case "":
		case "s":
			// For generated columns pg_attrdef holds the generation
			// expression, not a default.
			col.Generated = nullableString(defaultExpr)
		default:
			return shapeErrorf("columns", "unknown attgenerated %q on %s.%s.%s", generated.String, schema, table, name)
		}
		if col.Generated == "" {
			col.Default = nullableString(defaultExpr)
		}

		switch nullableString(identity) {
		case "":
		case "a":
			col.Identity = "ALWAYS"
		case "d":
			col.Identity = "BY DEFAULT"
		default:
			return shapeErrorf("columns", "unknown attidentity %q on %s.%s.%s", identity.String, schema, table, name)
		}

		// Custom column types are dependencies; built-in types are
		// deliberately absent from catalogs and filtered here. Domains are
		// their own kind.
		if ts := nullableString(typeSchema); ts != "" && !catalog.IsSystemSchema(ts) {
			if nullableString(typeKind) == "d" {
				col.Deps = append(col.Deps, catalog.DomainID(ts, nullableString(typeName)))
			} else {
				col.Deps = append(col.Deps, catalog.TypeID(ts, nullableString(typeName)))
			}
		}

		// A SERIAL default wires the table to its sequence. The matching
		// ownership edge comes from the sequence loader.
		if m := serialDefaultRe.FindStringSubmatch(col.Default); m != nil {
			seqSchema, seqName := splitQualified(m[1], schema)
			col.Deps = append(col.Deps, catalog.SequenceID(seqSchema, seqName))
		}

		t.Columns = append(t.Columns, col)
		return nil
	})
}

func (i *Inspector) loadPrimaryKeys(ctx context.Context, cat *catalog.Catalog) error {
	tables := make(map[catalog.ObjectID]*catalog.Table, len(cat.Tables))
	for _, t := range cat.Tables {
		tables[t.ID()] = t
	}

	return i.query(ctx, "primary_keys", queryPrimaryKeys, func(rows *sql.Rows) error {
		var schema, table, name string
		var columns pq.StringArray
		var comment sql.NullString
		if err := rows.Scan(&schema, &table, &name, &columns, &comment); err != nil {
			return shapeErrorf("primary_keys", "scan: %v", err)
		}
		t, ok := tables[catalog.TableID(schema, table)]
		if !ok {
			return shapeErrorf("primary_keys", "primary key %s on missing table %s.%s", name, schema, table)
		}
		t.PrimaryKey = &catalog.PrimaryKey{
			Name:    name,
			Columns: columns,
			Comment: nullableString(comment),
		}
		return nil
	})
}

// splitQualified splits a possibly schema-qualified, possibly quoted name,
// defaulting to fallbackSchema when unqualified.
func splitQualified(name, fallbackSchema string) (string, string) {
	unquote := func(s string) string {
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
		}
		return s
	}
	if idx := strings.Index(name, "."); idx > 0 && !strings.HasPrefix(name, `"`) {
		return unquote(name[:idx]), unquote(name[idx+1:])
	}
	if strings.HasPrefix(name, `"`) {
		if end := strings.Index(name[1:], `"`); end >= 0 && len(name) > end+2 && name[end+2] == '.' {
			return unquote(name[:end+2]), unquote(name[end+3:])
		}
	}
	return fallbackSchema, unquote(name)
}
