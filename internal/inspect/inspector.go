package inspect

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/pgmt/pgmt/internal/catalog"
)

// Inspector introspects a live PostgreSQL database into a catalog. Queries
// run sequentially over one connection; a catalog is never partially loaded.
type Inspector struct {
	db *sql.DB

	serverVersion int
}

// New creates an inspector over an open connection pool.
func New(db *sql.DB) *Inspector {
	return &Inspector{db: db}
}

// Load introspects the database and returns a populated catalog. All
// failures are fatal: the returned error is a *ConnectError, *QueryError, or
// *ShapeError, or the context's own error when it ends between queries.
func (i *Inspector) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := i.db.PingContext(ctx); err != nil {
		return nil, &ConnectError{Err: err}
	}

	if err := i.loadServerVersion(ctx); err != nil {
		return nil, err
	}

	cat := catalog.New()
	cat.ServerVersion = i.serverVersion

	loaders := []struct {
		name string
		fn   func(context.Context, *catalog.Catalog) error
	}{
		{"schemas", i.loadSchemas},
		{"extensions", i.loadExtensions},
		{"types", i.loadTypes},
		{"domains", i.loadDomains},
		{"sequences", i.loadSequences},
		{"tables", i.loadTables},
		{"columns", i.loadColumns},
		{"primary_keys", i.loadPrimaryKeys},
		{"constraints", i.loadConstraints},
		{"indexes", i.loadIndexes},
		{"views", i.loadViews},
		{"functions", i.loadFunctions},
		{"aggregates", i.loadAggregates},
		{"triggers", i.loadTriggers},
		{"grants", i.loadGrants},
		{"depends", i.loadDepends},
	}

	for _, l := range loaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.fn(ctx, cat); err != nil {
			return nil, err
		}
	}

	cat.Finalize()
	return cat, nil
}

// loadServerVersion interrogates the server version once; it gates
// version-dependent rendering such as transactional ALTER TYPE ... ADD VALUE.
func (i *Inspector) loadServerVersion(ctx context.Context) error {
	var raw string
	if err := i.db.QueryRowContext(ctx, "SHOW server_version_num").Scan(&raw); err != nil {
		return wrapQueryError("server_version", "SHOW server_version_num", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return shapeErrorf("server_version", "non-numeric server_version_num %q", raw)
	}
	i.serverVersion = n
	return nil
}

// query runs one named introspection query and hands each row to scan. The
// scan callback returns an error to abort; sql errors are wrapped with the
// query name for error reporting.
func (i *Inspector) query(ctx context.Context, name, sqlText string, scan func(rows *sql.Rows) error) error {
	rows, err := i.db.QueryContext(ctx, sqlText)
	if err != nil {
		return wrapQueryError(name, sqlText, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return wrapQueryError(name, sqlText, err)
	}
	return nil
}

func nullableString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullableInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
