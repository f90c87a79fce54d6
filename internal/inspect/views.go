package inspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

func (i *Inspector) loadViews(ctx context.Context, cat *catalog.Catalog) error {
	views := make(map[catalog.ObjectID]*catalog.View)

	err := i.query(ctx, "views", queryViews, func(rows *sql.Rows) error {
		var schema, name, definition string
		var reloptions pq.StringArray
		var comment sql.NullString
		if err := rows.Scan(&schema, &name, &definition, &reloptions, &comment); err != nil {
			return shapeErrorf("views", "scan: %v", err)
		}
		v := &catalog.View{
			Schema:     schema,
			Name:       name,
			Definition: strings.TrimRight(definition, " \n;"),
			Comment:    nullableString(comment),
		}
		for _, opt := range reloptions {
			switch opt {
			case "security_invoker=true", "security_invoker=on":
				v.SecurityInvoker = true
			case "security_barrier=true", "security_barrier=on":
				v.SecurityBarrier = true
			}
		}
		views[v.ID()] = v
		cat.Views = append(cat.Views, v)
		return nil
	})
	if err != nil {
		return err
	}

	return i.query(ctx, "view_columns", queryViewColumns, func(rows *sql.Rows) error {
		var schema, name, column, dataType string
		if err := rows.Scan(&schema, &name, &column, &dataType); err != nil {
			return shapeErrorf("view_columns", "scan: %v", err)
		}
		v, ok := views[catalog.ViewID(schema, name)]
		if !ok {
			return shapeErrorf("view_columns", "column %s of missing view %s.%s", column, schema, name)
		}
		v.Columns = append(v.Columns, catalog.ViewColumn{Name: column, DataType: dataType})
		return nil
	})
}
