package migrate

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SplitStatements splits SQL text into individual statements using the real
// PostgreSQL scanner, so dollar-quoted function bodies and embedded
// semicolons survive. Non-transactional sections execute their statements
// one at a time and need this split.
func SplitStatements(sql string) ([]string, error) {
	stmts, err := pg_query.SplitWithScanner(sql, true)
	if err != nil {
		return nil, fmt.Errorf("split statements: %w", err)
	}
	var out []string
	for _, s := range stmts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
