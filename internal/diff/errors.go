package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CycleError reports a dependency cycle the orderer could not break. The
// members are the identifiers of the steps stuck in the cycle.
type CycleError struct {
	Members []catalog.ObjectID
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Members))
	for i, id := range e.Members {
		names[i] = id.String()
	}
	return "cyclic dependency between: " + strings.Join(names, ", ")
}

// ColumnOrderError reports that a table's declared column order diverges
// from the database under the strict policy.
type ColumnOrderError struct {
	Table    catalog.ObjectID
	Expected []string
	Actual   []string
}

func (e *ColumnOrderError) Error() string {
	return fmt.Sprintf("%s: declared column order (%s) diverges from database order (%s)",
		e.Table, strings.Join(e.Expected, ", "), strings.Join(e.Actual, ", "))
}

// IncompatibleReplaceError reports that producing the diff would require a
// destructive replacement the caller's policy forbids.
type IncompatibleReplaceError struct {
	ID     catalog.ObjectID
	Reason string
}

func (e *IncompatibleReplaceError) Error() string {
	return fmt.Sprintf("%s cannot be migrated without data loss: %s", e.ID, e.Reason)
}
