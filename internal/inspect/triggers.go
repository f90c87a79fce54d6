package inspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

// pg_trigger.tgtype bitmask, from catalog/pg_trigger.h.
const (
	tgTypeRow       = 1 << 0
	tgTypeBefore    = 1 << 1
	tgTypeInsert    = 1 << 2
	tgTypeDelete    = 1 << 3
	tgTypeUpdate    = 1 << 4
	tgTypeTruncate  = 1 << 5
	tgTypeInsteadOf = 1 << 6
)

func (i *Inspector) loadTriggers(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "triggers", queryTriggers, func(rows *sql.Rows) error {
		var schema, table, name string
		var tgtype int
		var fnSchema, fnName, fnArgs, definition string
		var oldTable, newTable, comment sql.NullString
		var updateColumns pq.StringArray
		if err := rows.Scan(&schema, &table, &name, &tgtype, &fnSchema, &fnName,
			&fnArgs, &definition, &oldTable, &newTable, &updateColumns, &comment); err != nil {
			return shapeErrorf("triggers", "scan: %v", err)
		}

		trg := &catalog.Trigger{
			Schema:         schema,
			Table:          table,
			Name:           name,
			Function:       catalog.FunctionID(fnSchema, fnName, fnArgs),
			ReferencingOld: nullableString(oldTable),
			ReferencingNew: nullableString(newTable),
			UpdateColumns:  updateColumns,
			Definition:     definition,
			Comment:        nullableString(comment),
		}

		switch {
		case tgtype&tgTypeInsteadOf != 0:
			trg.Timing = catalog.TriggerTimingInsteadOf
		case tgtype&tgTypeBefore != 0:
			trg.Timing = catalog.TriggerTimingBefore
		default:
			trg.Timing = catalog.TriggerTimingAfter
		}

		if tgtype&tgTypeRow != 0 {
			trg.Level = catalog.TriggerLevelRow
		} else {
			trg.Level = catalog.TriggerLevelStatement
		}

		if tgtype&tgTypeInsert != 0 {
			trg.Events = append(trg.Events, "INSERT")
		}
		if tgtype&tgTypeDelete != 0 {
			trg.Events = append(trg.Events, "DELETE")
		}
		if tgtype&tgTypeUpdate != 0 {
			trg.Events = append(trg.Events, "UPDATE")
		}
		if tgtype&tgTypeTruncate != 0 {
			trg.Events = append(trg.Events, "TRUNCATE")
		}
		if len(trg.Events) == 0 {
			return shapeErrorf("triggers", "trigger %s.%s.%s fires on no events (tgtype %d)", schema, table, name, tgtype)
		}

		// The WHEN condition has no structured catalog column; it is carved
		// out of the reconstructed definition, which the server normalizes.
		trg.When = triggerWhenFromDefinition(definition)

		cat.Triggers = append(cat.Triggers, trg)
		return nil
	})
}

// triggerWhenFromDefinition extracts the WHEN (...) condition from
// pg_get_triggerdef output, or returns empty when there is none.
func triggerWhenFromDefinition(def string) string {
	idx := strings.Index(def, " WHEN (")
	if idx < 0 {
		return ""
	}
	rest := def[idx+len(" WHEN ("):]
	depth := 1
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return rest[:i]
			}
		}
	}
	return ""
}
