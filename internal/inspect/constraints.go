package inspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/pgmt/pgmt/internal/catalog"
)

// referentialActions maps pg_constraint action codes to SQL keywords.
var referentialActions = map[string]string{
	"a": "NO ACTION",
	"r": "RESTRICT",
	"c": "CASCADE",
	"n": "SET NULL",
	"d": "SET DEFAULT",
}

func (i *Inspector) loadConstraints(ctx context.Context, cat *catalog.Catalog) error {
	return i.query(ctx, "constraints", queryConstraints, func(rows *sql.Rows) error {
		var schema, table, name, contype, definition string
		var columns, refColumns pq.StringArray
		var refSchema, refTable, onDelete, onUpdate, comment sql.NullString
		var deferrable, deferred bool
		if err := rows.Scan(&schema, &table, &name, &contype, &definition, &columns,
			&refSchema, &refTable, &refColumns, &onDelete, &onUpdate,
			&deferrable, &deferred, &comment); err != nil {
			return shapeErrorf("constraints", "scan: %v", err)
		}

		con := &catalog.Constraint{
			Schema:            schema,
			Table:             table,
			Name:              name,
			Deferrable:        deferrable,
			InitiallyDeferred: deferred,
			Comment:           nullableString(comment),
		}

		switch contype {
		case "f":
			con.Type = catalog.ConstraintTypeForeignKey
			con.Columns = columns
			con.RefSchema = nullableString(refSchema)
			con.RefTable = nullableString(refTable)
			con.RefColumns = refColumns
			con.OnDelete = referentialActions[nullableString(onDelete)]
			con.OnUpdate = referentialActions[nullableString(onUpdate)]
			if con.OnDelete == "" || con.OnUpdate == "" {
				return shapeErrorf("constraints", "unknown referential action on %s.%s.%s", schema, table, name)
			}
		case "u":
			con.Type = catalog.ConstraintTypeUnique
			con.Columns = columns
		case "c":
			con.Type = catalog.ConstraintTypeCheck
			con.CheckClause = checkClauseFromDefinition(definition)
		case "x":
			con.Type = catalog.ConstraintTypeExclusion
			method, elements, where := exclusionFromDefinition(definition)
			con.ExclusionMethod = method
			con.ExclusionElements = elements
			con.ExclusionWhere = where
		default:
			return shapeErrorf("constraints", "unknown contype %q on %s.%s.%s", contype, schema, table, name)
		}

		cat.Constraints = append(cat.Constraints, con)
		return nil
	})
}

// checkClauseFromDefinition strips the leading CHECK keyword and the
// outermost parentheses from pg_get_constraintdef output, leaving the bare
// expression.
func checkClauseFromDefinition(def string) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(def), "CHECK"))
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// exclusionFromDefinition splits pg_get_constraintdef output of the form
// "EXCLUDE USING gist (a WITH =, b WITH &&) WHERE (...)" into its parts.
func exclusionFromDefinition(def string) (method string, elements []string, where string) {
	s := strings.TrimSpace(def)
	s = strings.TrimPrefix(s, "EXCLUDE")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "USING") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "USING"))
		if sp := strings.IndexByte(s, ' '); sp > 0 {
			method = s[:sp]
			s = strings.TrimSpace(s[sp:])
		}
	}
	if idx := strings.LastIndex(s, ") WHERE ("); idx >= 0 {
		where = strings.TrimSuffix(s[idx+len(") WHERE ("):], ")")
		s = s[:idx+1]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := s[1 : len(s)-1]
		elements = splitTopLevel(inner, ',')
	}
	return method, elements, where
}

// splitTopLevel splits on sep outside any parentheses, trimming whitespace.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
