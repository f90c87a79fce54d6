package diff

import (
	"sort"

	"github.com/pgmt/pgmt/internal/catalog"
)

// Phase buckets. Drops run first; creates build bottom-up through the type
// layer, functions, tables, table-attached objects, views, aggregates; grants
// and comments trail. The sequence<->table ownership cycle is broken by the
// ranking itself: ownership edges never participate in ordering.
const (
	phaseDrop      = 1
	phaseSchema    = 2
	phaseTypeLayer = 3
	phaseFunction  = 4
	phaseTable     = 5
	phaseAttached  = 6
	phaseView      = 7
	phaseAggregate = 8
	phaseGrant     = 9
	phaseComment   = 10
)

func phaseOf(s Step) int {
	id := s.Object()
	if id.Kind == catalog.KindGrant {
		return phaseGrant
	}
	switch s.Operation() {
	case OpDrop:
		return phaseDrop
	case OpComment:
		return phaseComment
	case OpSetOwnership:
		return phaseAttached
	}
	switch id.Kind {
	case catalog.KindSchema, catalog.KindExtension:
		return phaseSchema
	case catalog.KindType, catalog.KindDomain, catalog.KindSequence:
		return phaseTypeLayer
	case catalog.KindFunction:
		return phaseFunction
	case catalog.KindTable:
		return phaseTable
	case catalog.KindIndex, catalog.KindConstraint, catalog.KindTrigger:
		return phaseAttached
	case catalog.KindView:
		return phaseView
	case catalog.KindAggregate:
		return phaseAggregate
	default:
		return phaseComment
	}
}

// dropRank orders drops top-down within the drop phase: dependents of a kind
// generally drop before the kinds they depend on. Dependency edges still
// dominate; the rank only breaks ties deterministically.
var dropRank = map[catalog.Kind]int{
	catalog.KindTrigger:    0,
	catalog.KindConstraint: 1,
	catalog.KindIndex:      2,
	catalog.KindView:       3,
	catalog.KindAggregate:  4,
	catalog.KindTable:      5,
	catalog.KindFunction:   6,
	catalog.KindSequence:   7,
	catalog.KindDomain:     8,
	catalog.KindType:       9,
	catalog.KindExtension:  10,
	catalog.KindSchema:     11,
}

// opRank orders steps touching the same object: the object exists before it
// is adjusted, and comments land last.
func opRank(op Operation) int {
	switch op {
	case OpCreate, OpReplace:
		return 0
	case OpAlter:
		return 1
	case OpSetOption, OpSetOwnership:
		return 2
	case OpComment:
		return 3
	default:
		return 1
	}
}

type orderNode struct {
	step  Step
	phase int
	rank  int // kind tie-break within the phase
}

func (n *orderNode) less(other *orderNode) bool {
	if n.phase != other.phase {
		return n.phase < other.phase
	}
	if n.rank != other.rank {
		return n.rank < other.rank
	}
	a, b := n.step.Object(), other.step.Object()
	if a != b {
		return a.Less(b)
	}
	return opRank(n.step.Operation()) < opRank(other.step.Operation())
}

// Order arranges steps so every referenced object exists when referenced and
// every referencing object is removed before its dependency. Creates take
// their edges from the new catalog, drops from the old; externalEdges carries
// file-declared dependencies PostgreSQL does not track. The output is
// deterministic: Kahn's algorithm with a priority queue keyed by (phase,
// kind, identifier).
func Order(steps []Step, old, new *catalog.Catalog, externalEdges map[catalog.ObjectID][]catalog.ObjectID) ([]Step, error) {
	nodes := make([]*orderNode, len(steps))
	for i, s := range steps {
		rank := int(s.Object().Kind)
		if s.Operation() == OpDrop {
			rank = dropRank[s.Object().Kind]
		}
		nodes[i] = &orderNode{step: s, phase: phaseOf(s), rank: rank}
	}

	oldForward := mergeEdges(old.ForwardDeps, externalEdges)
	newForward := mergeEdges(new.ForwardDeps, externalEdges)

	// adj[i] lists nodes that must wait for node i.
	adj := make([][]int, len(nodes))
	inDegree := make([]int, len(nodes))
	addEdge := func(before, after int) {
		if before == after {
			return
		}
		adj[before] = append(adj[before], after)
		inDegree[after]++
	}

	dropsOn := make(map[catalog.ObjectID][]int)
	othersOn := make(map[catalog.ObjectID][]int)
	for i, n := range nodes {
		if n.step.Operation() == OpDrop {
			dropsOn[n.step.Object()] = append(dropsOn[n.step.Object()], i)
		} else {
			othersOn[n.step.Object()] = append(othersOn[n.step.Object()], i)
		}
	}

	for i, n := range nodes {
		id := n.step.Object()
		if n.step.Operation() == OpDrop {
			for _, dep := range oldForward[id] {
				if ownershipEdge(old, id, dep) {
					continue
				}
				// The dependent drops before what it needs: Drop(id) before
				// Drop(dep) and before anything rebuilding dep.
				for _, j := range dropsOn[dep] {
					addEdge(i, j)
				}
				for _, j := range othersOn[dep] {
					addEdge(i, j)
				}
			}
			// A drop of an object precedes its own re-creation.
			for _, j := range othersOn[id] {
				addEdge(i, j)
			}
			continue
		}

		// Creates build bottom-up: whatever id needs comes first.
		for _, dep := range newForward[id] {
			if ownershipEdge(new, id, dep) {
				continue
			}
			for _, j := range othersOn[dep] {
				if opRank(nodes[j].step.Operation()) <= opRank(n.step.Operation()) {
					addEdge(j, i)
				}
			}
		}
		// Steps on the same object run in operation order.
		for _, j := range othersOn[id] {
			if opRank(nodes[j].step.Operation()) < opRank(n.step.Operation()) {
				addEdge(j, i)
			}
		}
	}

	// Kahn's algorithm; the queue re-sorts on every pop so the output is
	// stable regardless of input order.
	var queue []int
	for i := range nodes {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	var out []Step
	done := 0
	for len(queue) > 0 {
		sort.Slice(queue, func(a, b int) bool { return nodes[queue[a]].less(nodes[queue[b]]) })
		cur := queue[0]
		queue = queue[1:]
		out = append(out, nodes[cur].step)
		done++
		for _, next := range adj[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if done != len(nodes) {
		var members []catalog.ObjectID
		seen := make(map[catalog.ObjectID]bool)
		for i, n := range nodes {
			if inDegree[i] > 0 && !seen[n.step.Object()] {
				seen[n.step.Object()] = true
				members = append(members, n.step.Object())
			}
		}
		sort.Slice(members, func(a, b int) bool { return members[a].Less(members[b]) })
		return nil, &CycleError{Members: members}
	}
	return out, nil
}

// ownershipEdge reports whether from is a sequence whose edge to to is the
// ownership half of the serial cycle. Ownership is a lifetime relationship,
// not an execution-order dependency.
func ownershipEdge(cat *catalog.Catalog, from, to catalog.ObjectID) bool {
	if from.Kind != catalog.KindSequence || to.Kind != catalog.KindTable {
		return false
	}
	seq, ok := cat.Find(from).(*catalog.Sequence)
	if !ok {
		return false
	}
	return seq.OwnedByTable == to.Name
}

func mergeEdges(base, extra map[catalog.ObjectID][]catalog.ObjectID) map[catalog.ObjectID][]catalog.ObjectID {
	if len(extra) == 0 {
		return base
	}
	merged := make(map[catalog.ObjectID][]catalog.ObjectID, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = append(append([]catalog.ObjectID(nil), merged[k]...), v...)
	}
	return merged
}
