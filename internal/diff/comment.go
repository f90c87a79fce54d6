package diff

import (
	"fmt"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CommentStep sets or drops the comment on an object, or on one column when
// Column is set. Comment steps are emitted by the owning kind's differ so
// they sort with their parent object.
type CommentStep struct {
	Target  catalog.ObjectID
	Column  string
	Comment string // empty drops the comment
}

// Object returns the commented object's identifier.
func (s *CommentStep) Object() catalog.ObjectID { return s.Target }

// Operation returns OpComment.
func (s *CommentStep) Operation() Operation { return OpComment }

// Render returns the COMMENT ON statement.
func (s *CommentStep) Render() []RenderedStatement {
	value := "NULL"
	if s.Comment != "" {
		value = literal(s.Comment)
	}
	return []RenderedStatement{safe(fmt.Sprintf("COMMENT ON %s IS %s;", s.commentTarget(), value))}
}

func (s *CommentStep) commentTarget() string {
	id := s.Target
	if s.Column != "" {
		return fmt.Sprintf("COLUMN %s.%s", qualified(id.Schema, id.Name), ident(s.Column))
	}
	switch id.Kind {
	case catalog.KindSchema:
		return "SCHEMA " + ident(id.Name)
	case catalog.KindExtension:
		return "EXTENSION " + ident(id.Name)
	case catalog.KindType:
		return "TYPE " + qualified(id.Schema, id.Name)
	case catalog.KindDomain:
		return "DOMAIN " + qualified(id.Schema, id.Name)
	case catalog.KindSequence:
		return "SEQUENCE " + qualified(id.Schema, id.Name)
	case catalog.KindTable:
		return "TABLE " + qualified(id.Schema, id.Name)
	case catalog.KindView:
		return "VIEW " + qualified(id.Schema, id.Name)
	case catalog.KindFunction:
		return fmt.Sprintf("FUNCTION %s(%s)", qualified(id.Schema, id.Name), id.Args)
	case catalog.KindAggregate:
		return fmt.Sprintf("AGGREGATE %s(%s)", qualified(id.Schema, id.Name), id.Args)
	case catalog.KindIndex:
		return "INDEX " + qualified(id.Schema, id.Name)
	case catalog.KindConstraint:
		return fmt.Sprintf("CONSTRAINT %s ON %s", ident(id.Name), qualified(id.Schema, id.Table))
	case catalog.KindTrigger:
		return fmt.Sprintf("TRIGGER %s ON %s", ident(id.Name), qualified(id.Schema, id.Table))
	default:
		return id.String()
	}
}

// diffComment emits a comment step when old and new comments differ.
func diffComment(target catalog.ObjectID, old, new string) []Step {
	if old == new {
		return nil
	}
	return []Step{&CommentStep{Target: target, Comment: new}}
}
