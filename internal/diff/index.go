package diff

import (
	"fmt"
	"strings"

	"github.com/pgmt/pgmt/internal/catalog"
)

// CreateIndexStep creates an index. Concurrent indexes render with
// CONCURRENTLY and must run outside a transaction.
type CreateIndexStep struct {
	Index *catalog.Index
}

func (s *CreateIndexStep) Object() catalog.ObjectID { return s.Index.ID() }
func (s *CreateIndexStep) Operation() Operation     { return OpCreate }

func (s *CreateIndexStep) Render() []RenderedStatement {
	i := s.Index
	var b strings.Builder
	b.WriteString("CREATE ")
	if i.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if i.Concurrent {
		b.WriteString("CONCURRENTLY ")
	}
	fmt.Fprintf(&b, "%s ON %s", ident(i.Name), qualified(i.Schema, i.Table))
	if i.Method != "btree" {
		b.WriteString(" USING " + i.Method)
	}

	cols := make([]string, len(i.Columns))
	for n, c := range i.Columns {
		col := c.Expression
		if !c.IsExpression {
			col = ident(c.Expression)
		}
		if c.Collation != "" {
			col += " COLLATE " + ident(c.Collation)
		}
		if c.OpClass != "" {
			col += " " + c.OpClass
		}
		if c.Desc {
			col += " DESC"
		}
		if c.NullsFirst != nil {
			// NULLS LAST is the default for ASC, NULLS FIRST for DESC; only
			// the non-default spelling is rendered.
			if *c.NullsFirst && !c.Desc {
				col += " NULLS FIRST"
			} else if !*c.NullsFirst && c.Desc {
				col += " NULLS LAST"
			}
		}
		cols[n] = col
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(cols, ", "))

	if len(i.Include) > 0 {
		fmt.Fprintf(&b, " INCLUDE (%s)", identList(i.Include))
	}
	if len(i.StorageParams) > 0 {
		fmt.Fprintf(&b, " WITH (%s)", strings.Join(i.StorageParams, ", "))
	}
	if i.Tablespace != "" {
		b.WriteString(" TABLESPACE " + ident(i.Tablespace))
	}
	if i.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", i.Where)
	}
	b.WriteString(";")

	if i.Concurrent {
		return []RenderedStatement{nonTransactional(b.String())}
	}
	return []RenderedStatement{safe(b.String())}
}

// DropIndexStep drops an index. Indexes are recreatable from the declared
// schema, so the drop is not destructive.
type DropIndexStep struct {
	Index *catalog.Index
}

func (s *DropIndexStep) Object() catalog.ObjectID { return s.Index.ID() }
func (s *DropIndexStep) Operation() Operation     { return OpDrop }

func (s *DropIndexStep) Render() []RenderedStatement {
	if s.Index.Concurrent {
		return []RenderedStatement{nonTransactional("DROP INDEX CONCURRENTLY " + qualified(s.Index.Schema, s.Index.Name) + ";")}
	}
	return []RenderedStatement{safe("DROP INDEX " + qualified(s.Index.Schema, s.Index.Name) + ";")}
}

// AlterIndexStep changes storage parameters in place.
type AlterIndexStep struct {
	Old *catalog.Index
	New *catalog.Index
}

func (s *AlterIndexStep) Object() catalog.ObjectID { return s.New.ID() }
func (s *AlterIndexStep) Operation() Operation     { return OpAlter }

func (s *AlterIndexStep) Render() []RenderedStatement {
	name := qualified(s.New.Schema, s.New.Name)
	var out []RenderedStatement
	if len(s.New.StorageParams) > 0 {
		out = append(out, safe(fmt.Sprintf("ALTER INDEX %s SET (%s);", name, strings.Join(s.New.StorageParams, ", "))))
	} else if len(s.Old.StorageParams) > 0 {
		names := make([]string, len(s.Old.StorageParams))
		for i, p := range s.Old.StorageParams {
			names[i] = strings.SplitN(p, "=", 2)[0]
		}
		out = append(out, safe(fmt.Sprintf("ALTER INDEX %s RESET (%s);", name, strings.Join(names, ", "))))
	}
	return out
}

func diffIndex(old, new *catalog.Index) []Step {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		steps := []Step{&CreateIndexStep{Index: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	case new == nil:
		return []Step{&DropIndexStep{Index: old}}
	case old.Equal(new):
		return nil
	}

	// Structure cannot change in place; storage parameters and comments can.
	if !new.StructuralEqual(old) {
		steps := []Step{&DropIndexStep{Index: old}, &CreateIndexStep{Index: new}}
		steps = append(steps, diffComment(new.ID(), "", new.Comment)...)
		return steps
	}

	var steps []Step
	if !stringsEqual(old.StorageParams, new.StorageParams) {
		steps = append(steps, &AlterIndexStep{Old: old, New: new})
	}
	steps = append(steps, diffComment(new.ID(), old.Comment, new.Comment)...)
	return steps
}
