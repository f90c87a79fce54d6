package diff

import (
	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateSchemaStep creates a schema.
type CreateSchemaStep struct {
	Schema *catalog.Schema
}

func (s *CreateSchemaStep) Object() catalog.ObjectID { return s.Schema.ID() }
func (s *CreateSchemaStep) Operation() Operation     { return OpCreate }

func (s *CreateSchemaStep) Render() []RenderedStatement {
	return []RenderedStatement{safe("CREATE SCHEMA " + ident(s.Schema.Name) + ";")}
}

// DropSchemaStep drops a schema. Dropping a schema is destructive: anything
// left inside goes with it.
type DropSchemaStep struct {
	Schema *catalog.Schema
}

func (s *DropSchemaStep) Object() catalog.ObjectID { return s.Schema.ID() }
func (s *DropSchemaStep) Operation() Operation     { return OpDrop }

func (s *DropSchemaStep) Render() []RenderedStatement {
	return []RenderedStatement{destructive("DROP SCHEMA " + ident(s.Schema.Name) + ";")}
}

func diffSchema(old, new *catalog.Schema) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateSchemaStep{Schema: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropSchemaStep{Schema: old}}
	case old.Equal(new):
		return nil
	default:
		// Only the comment can change in place.
		return diffComment(new.ID(), old.Comment, new.Comment)
	}
}

// CreateExtensionStep installs an extension.
type CreateExtensionStep struct {
	Extension *catalog.Extension
}

func (s *CreateExtensionStep) Object() catalog.ObjectID { return s.Extension.ID() }
func (s *CreateExtensionStep) Operation() Operation     { return OpCreate }

func (s *CreateExtensionStep) Render() []RenderedStatement {
	sql := "CREATE EXTENSION " + ident(s.Extension.Name)
	if s.Extension.Schema != "" {
		sql += " WITH SCHEMA " + ident(s.Extension.Schema)
	}
	return []RenderedStatement{safe(sql + ";")}
}

// DropExtensionStep removes an extension.
type DropExtensionStep struct {
	Extension *catalog.Extension
}

func (s *DropExtensionStep) Object() catalog.ObjectID { return s.Extension.ID() }
func (s *DropExtensionStep) Operation() Operation     { return OpDrop }

func (s *DropExtensionStep) Render() []RenderedStatement {
	return []RenderedStatement{destructive("DROP EXTENSION " + ident(s.Extension.Name) + ";")}
}

func diffExtension(old, new *catalog.Extension) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateExtensionStep{Extension: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropExtensionStep{Extension: old}}
	case old.Equal(new):
		return nil
	default:
		// Version upgrades are extension-defined and not attempted; a schema
		// move forces reinstallation.
		if old.Schema != new.Schema {
			return []Step{
				&DropExtensionStep{Extension: old},
				&CreateExtensionStep{Extension: new},
			}
		}
		return diffComment(new.ID(), old.Comment, new.Comment)
	}
}
