package inspect

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadIndexes(ctx context.Context, cat *catalog.Catalog) error {
	indexes := make(map[catalog.ObjectID]*catalog.Index)

	err := i.query(ctx, "indexes", queryIndexes, func(rows *sql.Rows) error {
		var schema, indexName, tableName, method, definition string
		var unique bool
		var nkeyatts, natts int
		var predicate, tablespace, comment sql.NullString
		var reloptions pq.StringArray
		if err := rows.Scan(&schema, &indexName, &tableName, &method, &unique,
			&nkeyatts, &natts, &definition, &predicate, &reloptions, &tablespace, &comment); err != nil {
			return shapeErrorf("indexes", "scan: %v", err)
		}
		idx := &catalog.Index{
			Schema:        schema,
			Name:          indexName,
			Table:         tableName,
			Method:        method,
			Unique:        unique,
			Where:         nullableString(predicate),
			StorageParams: reloptions,
			Tablespace:    nullableString(tablespace),
			Comment:       nullableString(comment),
		}
		indexes[idx.ID()] = idx
		cat.Indexes = append(cat.Indexes, idx)
		return nil
	})
	if err != nil {
		return err
	}

	return i.query(ctx, "index_columns", queryIndexColumns, func(rows *sql.Rows) error {
		var schema, indexName, keyExpr string
		var ord int
		var isKey bool
		var columnName, opclass, collation sql.NullString
		var isDesc, nullsFirst sql.NullBool
		if err := rows.Scan(&schema, &indexName, &ord, &isKey, &columnName,
			&keyExpr, &opclass, &isDesc, &nullsFirst, &collation); err != nil {
			return shapeErrorf("index_columns", "scan: %v", err)
		}

		idx, ok := indexes[catalog.IndexID(schema, indexName)]
		if !ok {
			return shapeErrorf("index_columns", "key %d of missing index %s.%s", ord, schema, indexName)
		}

		if !isKey {
			// INCLUDE columns are always plain columns.
			if !columnName.Valid {
				return shapeErrorf("index_columns", "expression INCLUDE column on %s.%s", schema, indexName)
			}
			idx.Include = append(idx.Include, columnName.String)
			return nil
		}

		col := catalog.IndexColumn{
			// The query reports the operator class only when it is not the
			// method default, so a bare declaration and an explicit default
			// compare equal.
			OpClass:   nullableString(opclass),
			Collation: nullableString(collation),
		}
		if columnName.Valid {
			col.Expression = columnName.String
		} else {
			col.Expression = keyExpr
			col.IsExpression = true
		}
		if isDesc.Valid {
			col.Desc = isDesc.Bool
			nf := nullsFirst.Valid && nullsFirst.Bool
			// NULLS FIRST is the btree default for DESC keys; record the flag
			// only when the method orders at all.
			col.NullsFirst = &nf
		}
		idx.Columns = append(idx.Columns, col)
		return nil
	})
}
