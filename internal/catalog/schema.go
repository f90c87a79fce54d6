package catalog

// Schema represents a database schema (namespace).
type Schema struct {
	Name    string
	Owner   string
	Comment string
}

// ID returns the schema's identifier.
func (s *Schema) ID() ObjectID { return SchemaID(s.Name) }

// DependsOn returns the schema's dependencies; schemas depend on nothing.
func (s *Schema) DependsOn() []ObjectID { return nil }

// Equal reports whether two schemas are identical for diffing purposes.
// Ownership is not diffed, so Owner does not participate.
func (s *Schema) Equal(other *Schema) bool {
	return s.Name == other.Name && s.Comment == other.Comment
}

// Extension represents an installed extension. Version upgrades are not
// modeled; an extension either exists or it does not.
type Extension struct {
	Name    string
	Schema  string
	Version string
	Comment string
}

// ID returns the extension's identifier.
func (e *Extension) ID() ObjectID { return ExtensionID(e.Name) }

// DependsOn returns the extension's dependencies: its installation schema.
func (e *Extension) DependsOn() []ObjectID {
	if e.Schema == "" {
		return nil
	}
	return []ObjectID{SchemaID(e.Schema)}
}

// Equal reports whether two extensions are identical for diffing purposes.
// Versions are ignored because upgrade paths are extension-defined.
func (e *Extension) Equal(other *Extension) bool {
	return e.Name == other.Name && e.Schema == other.Schema && e.Comment == other.Comment
}
