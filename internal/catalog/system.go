package catalog

// systemSchemas are namespaces whose objects are never loaded into a catalog.
// Edges pointing into them are deliberately dangling and get filtered from
// dependency walks.
var systemSchemas = map[string]bool{
	"pg_catalog":         true,
	"pg_toast":           true,
	"information_schema": true,
}

// IsSystemSchema reports whether the named schema belongs to PostgreSQL
// itself.
func IsSystemSchema(name string) bool { return systemSchemas[name] }

// IsSystemID reports whether an identifier names a built-in object that is
// deliberately absent from catalogs.
func IsSystemID(id ObjectID) bool {
	if id.Kind == KindSchema {
		return systemSchemas[id.Name]
	}
	return systemSchemas[id.Schema]
}
