package inspect

import (
	"context"
	"database/sql"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadSequences(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "sequences", querySequences, func(rows *sql.Rows) error {
		var schema, name, dataType string
		var start, increment, cache int64
		var minValue, maxValue sql.NullInt64
		var cycle bool
		var ownedSchema, ownedTable, ownedColumn, comment sql.NullString
		if err := rows.Scan(&schema, &name, &dataType, &start, &increment,
			&minValue, &maxValue, &cache, &cycle,
			&ownedSchema, &ownedTable, &ownedColumn, &comment); err != nil {
			return shapeErrorf("sequences", "scan: %v", err)
		}

		seq := &catalog.Sequence{
			Schema:    schema,
			Name:      name,
			DataType:  dataType,
			Start:     start,
			Increment: increment,
			MinValue:  nullableInt64(minValue),
			MaxValue:  nullableInt64(maxValue),
			Cache:     cache,
			Cycle:     cycle,
			Comment:   nullableString(comment),
		}

		// Sequence ownership is the back half of the serial cycle: the table
		// depends on the sequence for its default, the sequence depends on
		// the table for its lifetime. Phase ranking breaks the loop.
		if ownedTable.Valid {
			seq.OwnedByTable = ownedTable.String
			seq.OwnedByColumn = nullableString(ownedColumn)
			os := nullableString(ownedSchema)
			if os == "" {
				os = schema
			}
			seq.Deps = append(seq.Deps, catalog.TableID(os, ownedTable.String))
		}

		cat.Sequences = append(cat.Sequences, seq)
		return nil
	})
}
