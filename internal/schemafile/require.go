package schemafile

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/pgmt/pgmt/internal/catalog"
)

const requirePrefix = "-- require:"

// MissingRequirementError reports a `-- require:` directive pointing at a
// file that does not exist.
type MissingRequirementError struct {
	From string
	To   string
	Line int
}

func (e *MissingRequirementError) Error() string {
	return fmt.Sprintf("%s:%d: required file %q does not exist", e.From, e.Line, e.To)
}

// RequireCycleError reports a cycle among `-- require:` directives.
type RequireCycleError struct {
	Cycle []string
}

func (e *RequireCycleError) Error() string {
	return "requirement cycle: " + strings.Join(e.Cycle, " -> ")
}

// Requirement is one resolved `-- require:` directive with its source line.
type Requirement struct {
	Path string
	Line int
}

// Requirements maps each schema file to its requirements. Paths are
// forward-slashed and relative to the schema root, with the .sql extension.
type Requirements map[string][]Requirement

// LoadRequires walks every .sql file under root and parses its requirement
// headers. Missing targets and cycles are fatal, reported with file
// locations.
func LoadRequires(fs afero.Fs, root string) (Requirements, error) {
	reqs := make(Requirements)

	err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}
		rel := path.Clean(strings.TrimPrefix(strings.TrimPrefix(p, root), "/"))
		deps, err := parseRequireHeader(fs, p)
		if err != nil {
			return err
		}
		reqs[rel] = deps
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := reqs.validate(); err != nil {
		return nil, err
	}
	return reqs, nil
}

// parseRequireHeader reads the leading `-- require:` lines of one file. The
// header ends at the first line that is neither blank nor a require
// directive.
func parseRequireHeader(fs afero.Fs, p string) ([]Requirement, error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	var deps []Requirement
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, requirePrefix) {
			break
		}
		for _, raw := range strings.Split(strings.TrimPrefix(line, requirePrefix), ",") {
			dep := strings.TrimSpace(raw)
			if dep == "" {
				continue
			}
			// The .sql extension may be omitted in directives.
			if !strings.HasSuffix(dep, ".sql") {
				dep += ".sql"
			}
			deps = append(deps, Requirement{Path: path.Clean(dep), Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return deps, nil
}

// validate checks that every requirement resolves and that no cycle exists.
func (r Requirements) validate() error {
	files := make([]string, 0, len(r))
	for f := range r {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, from := range files {
		for _, req := range r[from] {
			if _, ok := r[req.Path]; !ok {
				return &MissingRequirementError{From: from, To: req.Path, Line: req.Line}
			}
		}
	}

	// Depth-first cycle detection with path reconstruction.
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(r))
	var stack []string

	var visit func(f string) *RequireCycleError
	visit = func(f string) *RequireCycleError {
		state[f] = visiting
		stack = append(stack, f)
		for _, req := range r[f] {
			switch state[req.Path] {
			case visiting:
				start := 0
				for i, s := range stack {
					if s == req.Path {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), stack[start:]...), req.Path)
				return &RequireCycleError{Cycle: cycle}
			case unvisited:
				if err := visit(req.Path); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[f] = done
		return nil
	}

	for _, f := range files {
		if state[f] == unvisited {
			if err := visit(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Edges translates file-level requirements into identifier edges for the
// orderer, given the mapping from file path to the object each file
// declares. Files without a mapped object (or requirements pointing at one)
// contribute nothing.
func Edges(reqs Requirements, objects map[string]catalog.ObjectID) map[catalog.ObjectID][]catalog.ObjectID {
	edges := make(map[catalog.ObjectID][]catalog.ObjectID)
	for from, tos := range reqs {
		fromID, ok := objects[from]
		if !ok {
			continue
		}
		for _, req := range tos {
			if toID, ok := objects[req.Path]; ok {
				edges[fromID] = append(edges[fromID], toID)
			}
		}
	}
	for id := range edges {
		sort.Slice(edges[id], func(a, b int) bool { return edges[id][a].Less(edges[id][b]) })
	}
	return edges
}
