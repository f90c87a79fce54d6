package catalog

import "sort"

// Entity is implemented by every catalog record. Identifiers are the only
// cross-component reference; Entity exists so the cascade expander and the
// schema file generator can handle records uniformly.
type Entity interface {
	ID() ObjectID
	DependsOn() []ObjectID
}

// Catalog is an immutable snapshot of every user-visible object in one
// database, plus the dependency edge maps. Collections are sorted by
// identifier so catalogs are deterministic for snapshot testing. An empty
// catalog is valid and represents a fresh database.
type Catalog struct {
	// ServerVersion is the source server's version number
	// (server_version_num), zero for catalogs not loaded from a database.
	ServerVersion int

	Schemas     []*Schema
	Extensions  []*Extension
	Types       []*Type
	Domains     []*Domain
	Sequences   []*Sequence
	Tables      []*Table
	Views       []*View
	Functions   []*Function
	Aggregates  []*Aggregate
	Indexes     []*Index
	Constraints []*Constraint
	Triggers    []*Trigger
	Grants      []*Grant

	// ForwardDeps maps an object to what it needs before it can exist;
	// ReverseDeps is the exact inverse.
	ForwardDeps map[ObjectID][]ObjectID
	ReverseDeps map[ObjectID][]ObjectID

	byID map[ObjectID]Entity
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		ForwardDeps: make(map[ObjectID][]ObjectID),
		ReverseDeps: make(map[ObjectID][]ObjectID),
	}
}

// Entities returns every entity in the catalog in identifier order.
func (c *Catalog) Entities() []Entity {
	var out []Entity
	for _, s := range c.Schemas {
		out = append(out, s)
	}
	for _, e := range c.Extensions {
		out = append(out, e)
	}
	for _, t := range c.Types {
		out = append(out, t)
	}
	for _, d := range c.Domains {
		out = append(out, d)
	}
	for _, s := range c.Sequences {
		out = append(out, s)
	}
	for _, t := range c.Tables {
		out = append(out, t)
	}
	for _, v := range c.Views {
		out = append(out, v)
	}
	for _, f := range c.Functions {
		out = append(out, f)
	}
	for _, a := range c.Aggregates {
		out = append(out, a)
	}
	for _, i := range c.Indexes {
		out = append(out, i)
	}
	for _, cn := range c.Constraints {
		out = append(out, cn)
	}
	for _, t := range c.Triggers {
		out = append(out, t)
	}
	for _, g := range c.Grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// Find returns the entity with the given identifier, or nil.
func (c *Catalog) Find(id ObjectID) Entity {
	if c.byID == nil {
		c.byID = make(map[ObjectID]Entity)
		for _, e := range c.Entities() {
			c.byID[e.ID()] = e
		}
	}
	return c.byID[id]
}

// Has reports whether the catalog contains an entity with the identifier.
func (c *Catalog) Has(id ObjectID) bool { return c.Find(id) != nil }

// Finalize sorts every collection by identifier and rebuilds the reverse
// dependency map from the forward map. Loaders and test fixtures call it
// once; the catalog is read-only afterwards.
func (c *Catalog) Finalize() {
	sort.Slice(c.Schemas, func(i, j int) bool { return c.Schemas[i].ID().Less(c.Schemas[j].ID()) })
	sort.Slice(c.Extensions, func(i, j int) bool { return c.Extensions[i].ID().Less(c.Extensions[j].ID()) })
	sort.Slice(c.Types, func(i, j int) bool { return c.Types[i].ID().Less(c.Types[j].ID()) })
	sort.Slice(c.Domains, func(i, j int) bool { return c.Domains[i].ID().Less(c.Domains[j].ID()) })
	sort.Slice(c.Sequences, func(i, j int) bool { return c.Sequences[i].ID().Less(c.Sequences[j].ID()) })
	sort.Slice(c.Tables, func(i, j int) bool { return c.Tables[i].ID().Less(c.Tables[j].ID()) })
	sort.Slice(c.Views, func(i, j int) bool { return c.Views[i].ID().Less(c.Views[j].ID()) })
	sort.Slice(c.Functions, func(i, j int) bool { return c.Functions[i].ID().Less(c.Functions[j].ID()) })
	sort.Slice(c.Aggregates, func(i, j int) bool { return c.Aggregates[i].ID().Less(c.Aggregates[j].ID()) })
	sort.Slice(c.Indexes, func(i, j int) bool { return c.Indexes[i].ID().Less(c.Indexes[j].ID()) })
	sort.Slice(c.Constraints, func(i, j int) bool { return c.Constraints[i].ID().Less(c.Constraints[j].ID()) })
	sort.Slice(c.Triggers, func(i, j int) bool { return c.Triggers[i].ID().Less(c.Triggers[j].ID()) })
	sort.Slice(c.Grants, func(i, j int) bool { return c.Grants[i].ID().Less(c.Grants[j].ID()) })

	if c.ForwardDeps == nil {
		c.ForwardDeps = make(map[ObjectID][]ObjectID)
	}

	// Entity-declared dependencies and loader-recorded pg_depend edges merge
	// into one forward map.
	for _, e := range c.Entities() {
		for _, dep := range e.DependsOn() {
			c.addForward(e.ID(), dep)
		}
	}

	// Every non-system object needs its containing schema.
	for _, e := range c.Entities() {
		id := e.ID()
		if id.Kind == KindSchema || id.Kind == KindExtension || id.Kind == KindGrant {
			continue
		}
		if id.Schema != "" {
			c.addForward(id, SchemaID(id.Schema))
		}
	}

	// Edges into objects the catalog does not hold are either system objects
	// or extension-owned; both are deliberately absent, so the edges go too.
	// The pg_depend rewrites already redirected extension-owned targets at
	// the extension itself.
	c.byID = nil
	for id := range c.ForwardDeps {
		kept := c.ForwardDeps[id][:0]
		for _, dep := range c.ForwardDeps[id] {
			if c.Has(dep) {
				kept = append(kept, dep)
			}
		}
		if len(kept) == 0 {
			delete(c.ForwardDeps, id)
			continue
		}
		c.ForwardDeps[id] = sortIDs(dedupeIDs(kept))
	}

	c.ReverseDeps = make(map[ObjectID][]ObjectID)
	for from, tos := range c.ForwardDeps {
		for _, to := range tos {
			c.ReverseDeps[to] = append(c.ReverseDeps[to], from)
		}
	}
	for id := range c.ReverseDeps {
		c.ReverseDeps[id] = sortIDs(dedupeIDs(c.ReverseDeps[id]))
	}

	c.byID = nil
}

func (c *Catalog) addForward(from, to ObjectID) {
	if from == to {
		return
	}
	c.ForwardDeps[from] = append(c.ForwardDeps[from], to)
}

// AddDependency records a forward edge. Loaders call it while building; the
// reverse map is derived in Finalize.
func (c *Catalog) AddDependency(from, to ObjectID) {
	if c.ForwardDeps == nil {
		c.ForwardDeps = make(map[ObjectID][]ObjectID)
	}
	c.addForward(from, to)
}

// TransitiveDependents walks ReverseDeps from id and returns every entity
// present in the catalog that directly or transitively needs id, in
// identifier order. System objects and edge endpoints with no entity are
// skipped, not errors.
func (c *Catalog) TransitiveDependents(id ObjectID) []ObjectID {
	seen := make(map[ObjectID]bool)
	var out []ObjectID
	var walk func(ObjectID)
	walk = func(cur ObjectID) {
		for _, dep := range c.ReverseDeps[cur] {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if c.Has(dep) {
				out = append(out, dep)
			}
			walk(dep)
		}
	}
	walk(id)
	return sortIDs(out)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortIDs(ids []ObjectID) []ObjectID {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

func dedupeIDs(ids []ObjectID) []ObjectID {
	if len(ids) <= 1 {
		return ids
	}
	seen := make(map[ObjectID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
