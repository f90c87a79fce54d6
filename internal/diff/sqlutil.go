package diff

import (
	"strings"

	"github.com/lib/pq"
)

// ident double-quotes an identifier unconditionally. Unconditional quoting
// keeps reserved words and mixed-case names safe without a keyword table.
func ident(name string) string {
	return pq.QuoteIdentifier(name)
}

// qualified renders "schema"."name".
func qualified(schema, name string) string {
	return ident(schema) + "." + ident(name)
}

// identList renders a comma-separated list of quoted identifiers.
func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}

// literal single-quotes a string literal, doubling embedded quotes.
func literal(s string) string {
	return pq.QuoteLiteral(s)
}

// safe wraps SQL in a Safe statement.
func safe(sql string) RenderedStatement {
	return RenderedStatement{SQL: sql, Safety: Safe}
}

// destructive wraps SQL in a Destructive statement.
func destructive(sql string) RenderedStatement {
	return RenderedStatement{SQL: sql, Safety: Destructive}
}

// nonTransactional wraps SQL in a NonTransactional statement.
func nonTransactional(sql string) RenderedStatement {
	return RenderedStatement{SQL: sql, Safety: NonTransactional}
}
