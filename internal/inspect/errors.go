package inspect

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectError reports that the database could not be reached. Always fatal.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot connect to database: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError reports that the server rejected an introspection query. It
// carries the SQLSTATE and server position context when available.
type QueryError struct {
	Query   string // short name of the failing introspection query
	SQL     string
	Code    string
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("catalog query %q failed: %s", e.Query, e.Message)
	if e.Code != "" {
		msg += fmt.Sprintf(" (SQLSTATE %s)", e.Code)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// ShapeError reports a catalog row that violates the loader's invariants.
// It indicates a bug or an unsupported server, never a user mistake.
type ShapeError struct {
	Query string
	Row   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected catalog shape in %s: %s", e.Query, e.Row)
}

// wrapQueryError converts a driver error into a QueryError, extracting the
// SQLSTATE and error position when the driver exposes them.
func wrapQueryError(query, sql string, err error) error {
	qe := &QueryError{Query: query, SQL: sql, Message: err.Error(), Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		qe.Code = pgErr.Code
		qe.Message = pgErr.Message
		qe.Line = int(pgErr.Line)
		if pgErr.Position > 0 {
			qe.Column = int(pgErr.Position)
		}
	}
	return qe
}

func shapeErrorf(query, format string, args ...any) error {
	return &ShapeError{Query: query, Row: fmt.Sprintf(format, args...)}
}
