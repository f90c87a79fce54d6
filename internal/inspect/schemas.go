package inspect

import (
	"context"
	"database/sql"

	"github.com/pgmt/pgmt/internal/catalog"
)

// publicSchemaDefaultComment is the comment PostgreSQL ships on the public
// schema. It is normalized to absent so a freshly reset database does not
// diff against a declared schema. Other schemas keep their comments verbatim.
const publicSchemaDefaultComment = "standard public schema"

func (i *Inspector) loadSchemas(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "schemas", querySchemas, func(rows *sql.Rows) error {
		var name, owner string
		var comment sql.NullString
		if err := rows.Scan(&name, &owner, &comment); err != nil {
			return shapeErrorf("schemas", "scan: %v", err)
		}
		s := &catalog.Schema{
			Name:    name,
			Owner:   owner,
			Comment: nullableString(comment),
		}
		if s.Name == "public" && s.Comment == publicSchemaDefaultComment {
			s.Comment = ""
		}
		cat.Schemas = append(cat.Schemas, s)
		return nil
	})
}

func (i *Inspector) loadExtensions(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "extensions", queryExtensions, func(rows *sql.Rows) error {
		var name, schema, version string
		var comment sql.NullString
		if err := rows.Scan(&name, &schema, &version, &comment); err != nil {
			return shapeErrorf("extensions", "scan: %v", err)
		}
		ext := &catalog.Extension{
			Name:    name,
			Version: version,
			Comment: nullableString(comment),
		}
		// Extensions installed into a system schema still exist as catalog
		// entities; they just carry no schema edge.
		if !catalog.IsSystemSchema(schema) {
			ext.Schema = schema
		}
		cat.Extensions = append(cat.Extensions, ext)
		return nil
	})
}
