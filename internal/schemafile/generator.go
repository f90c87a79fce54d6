// Package schemafile writes a catalog out as a tree of SQL files and loads
// the `-- require:` dependency headers those files carry. The generated tree
// reloads into an equal catalog modulo the comment normalizations the loader
// applies.
package schemafile

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/pgmt/pgmt/internal/catalog"
	"github.com/pgmt/pgmt/internal/diff"
)

// kindDirs maps entity kinds to their directory under the schema root.
// Indexes and non-primary-key constraints live in their table's file, not in
// files of their own.
var kindDirs = map[catalog.Kind]string{
	catalog.KindSchema:    "schemas",
	catalog.KindExtension: "extensions",
	catalog.KindType:      "types",
	catalog.KindDomain:    "domains",
	catalog.KindSequence:  "sequences",
	catalog.KindTable:     "tables",
	catalog.KindView:      "views",
	catalog.KindFunction:  "functions",
	catalog.KindAggregate: "aggregates",
	catalog.KindTrigger:   "triggers",
	catalog.KindGrant:     "grants",
}

// Generator writes schema file trees.
type Generator struct {
	fs afero.Fs
}

// NewGenerator creates a generator over the given filesystem.
func NewGenerator(fs afero.Fs) *Generator {
	return &Generator{fs: fs}
}

// WriteTree writes one file per object under root. Each file starts with
// `-- require:` headers naming the object's dependencies within the catalog,
// then the CREATE statements.
func (g *Generator) WriteTree(root string, cat *catalog.Catalog) error {
	files := planFiles(cat)

	for _, f := range files {
		if err := g.fs.MkdirAll(path.Join(root, path.Dir(f.relPath)), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.relPath, err)
		}
		if err := afero.WriteFile(g.fs, path.Join(root, f.relPath), []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.relPath, err)
		}
	}
	return nil
}

type plannedFile struct {
	relPath string
	content string
}

// fileFor returns the relative path for an entity's file. Filenames are
// schema-qualified unless the schema is public.
func fileFor(id catalog.ObjectID) (string, bool) {
	dir, ok := kindDirs[id.Kind]
	if !ok {
		return "", false
	}
	var base string
	switch id.Kind {
	case catalog.KindSchema, catalog.KindExtension:
		base = id.Name
	case catalog.KindTrigger:
		base = id.Table + "_" + id.Name
		if id.Schema != "public" {
			base = id.Schema + "." + base
		}
	default:
		base = id.Name
		if id.Schema != "public" && id.Schema != "" {
			base = id.Schema + "." + base
		}
	}
	return path.Join(dir, base+".sql"), true
}

func planFiles(cat *catalog.Catalog) []plannedFile {
	// Indexes and non-PK constraints fold into their table's file; grants
	// group by target object.
	type fileBody struct {
		requires map[string]bool
		chunks   []string
	}
	bodies := make(map[string]*fileBody)
	var order []string

	body := func(rel string) *fileBody {
		b, ok := bodies[rel]
		if !ok {
			b = &fileBody{requires: make(map[string]bool)}
			bodies[rel] = b
			order = append(order, rel)
		}
		return b
	}

	homeOf := func(id catalog.ObjectID) (string, bool) {
		switch id.Kind {
		case catalog.KindIndex:
			return "", false
		case catalog.KindConstraint:
			return "", false
		case catalog.KindGrant:
			return "", false
		}
		return fileFor(id)
	}

	addRequires := func(b *fileBody, self string, id catalog.ObjectID) {
		for _, dep := range cat.ForwardDeps[id] {
			target, ok := requireTarget(dep)
			if !ok {
				continue
			}
			if target != self {
				b.requires[target] = true
			}
		}
	}

	for _, e := range cat.Entities() {
		id := e.ID()
		var rel string
		switch id.Kind {
		case catalog.KindIndex:
			idx := e.(*catalog.Index)
			rel, _ = fileFor(catalog.TableID(idx.Schema, idx.Table))
		case catalog.KindConstraint:
			con := e.(*catalog.Constraint)
			rel, _ = fileFor(catalog.TableID(con.Schema, con.Table))
		case catalog.KindGrant:
			grant := e.(*catalog.Grant)
			rel = grantFile(grant.Object)
		default:
			var ok bool
			rel, ok = homeOf(id)
			if !ok {
				continue
			}
		}

		b := body(rel)
		addRequires(b, rel, id)
		var stmts []string
		for _, stmt := range diff.CreateStatements(e) {
			stmts = append(stmts, stmt.SQL)
		}
		if len(stmts) > 0 {
			b.chunks = append(b.chunks, strings.Join(stmts, "\n"))
		}

		// Grants and attached objects also require their home file's object.
		if id.Kind == catalog.KindGrant {
			if target, ok := requireTarget(e.(*catalog.Grant).Object); ok {
				b.requires[target] = true
			}
		}
	}

	sort.Strings(order)
	files := make([]plannedFile, 0, len(order))
	for _, rel := range order {
		b := bodies[rel]
		var sb strings.Builder
		reqs := make([]string, 0, len(b.requires))
		for r := range b.requires {
			reqs = append(reqs, r)
		}
		sort.Strings(reqs)
		for _, r := range reqs {
			fmt.Fprintf(&sb, "-- require: %s\n", r)
		}
		if len(reqs) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(b.chunks, "\n\n"))
		sb.WriteString("\n")
		files = append(files, plannedFile{relPath: rel, content: sb.String()})
	}
	return files
}

// requireTarget maps a dependency identifier to the file that declares it.
// Indexes and constraints resolve to their table's file.
func requireTarget(id catalog.ObjectID) (string, bool) {
	switch id.Kind {
	case catalog.KindIndex:
		return "", false
	case catalog.KindConstraint:
		return fileFor(catalog.TableID(id.Schema, id.Table))
	case catalog.KindGrant:
		return "", false
	}
	return fileFor(id)
}

func grantFile(target catalog.ObjectID) string {
	base := target.Name
	switch target.Kind {
	case catalog.KindSchema, catalog.KindExtension:
	default:
		if target.Schema != "public" && target.Schema != "" {
			base = target.Schema + "." + target.Name
		}
	}
	return path.Join("grants", base+".sql")
}
