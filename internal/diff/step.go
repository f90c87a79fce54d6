package diff

import (
	"github.com/pgmt/pgmt/internal/catalog"
)

// Operation is what a step does to its subject.
type Operation int

const (
	OpCreate Operation = iota
	OpDrop
	OpAlter
	OpReplace
	OpComment
	OpSetOption
	OpSetOwnership
)

// String returns the lower-case operation name.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDrop:
		return "drop"
	case OpAlter:
		return "alter"
	case OpReplace:
		return "replace"
	case OpComment:
		return "comment"
	case OpSetOption:
		return "set_option"
	case OpSetOwnership:
		return "set_ownership"
	default:
		return "unknown"
	}
}

// Safety classifies a rendered statement. Destructive statements lose user
// data on rollback and require force flags downstream; non-transactional
// statements must run outside a transaction.
type Safety int

const (
	Safe Safety = iota
	Destructive
	NonTransactional
)

// String returns the safety label used in plan output.
func (s Safety) String() string {
	switch s {
	case Safe:
		return "safe"
	case Destructive:
		return "destructive"
	case NonTransactional:
		return "non-transactional"
	default:
		return "unknown"
	}
}

// RenderedStatement is one SQL statement with its safety classification.
type RenderedStatement struct {
	SQL    string
	Safety Safety
}

// Step is one typed migration operation. Steps are produced by the per-kind
// differs, expanded by the cascade pass, arranged by the orderer, and finally
// rendered. A step's identity is its subject identifier plus operation.
type Step interface {
	// Object is the identifier of the step's subject.
	Object() catalog.ObjectID
	// Operation is what the step does to the subject.
	Operation() Operation
	// Render returns the step's SQL statements in execution order.
	Render() []RenderedStatement
}

// dropCreate is implemented by Replace steps whose rendering is DROP followed
// by CREATE; the cascade expander treats them as structurally destructive.
type dropCreate interface {
	dropCreate()
}

// syntheticStep tags a step injected by the cascade expander so tests and
// error messages can distinguish it from a user-declared diff.
type syntheticStep struct {
	Step
}

// markSynthetic wraps a step with cascade provenance. Wrapping twice is a
// no-op, which keeps the expander idempotent.
func markSynthetic(s Step) Step {
	if IsSynthetic(s) {
		return s
	}
	return syntheticStep{Step: s}
}

// IsSynthetic reports whether the step was injected by the cascade expander.
func IsSynthetic(s Step) bool {
	_, ok := s.(syntheticStep)
	return ok
}

func (s syntheticStep) unwrap() Step { return s.Step }

// underlying strips cascade provenance for type switches on the concrete
// step.
func underlying(s Step) Step {
	if w, ok := s.(syntheticStep); ok {
		return w.unwrap()
	}
	return s
}

// IsDestructive reports whether any of the step's statements is classified
// destructive.
func IsDestructive(s Step) bool {
	for _, stmt := range s.Render() {
		if stmt.Safety == Destructive {
			return true
		}
	}
	return false
}

// IsNonTransactional reports whether any of the step's statements must run
// outside a transaction.
func IsNonTransactional(s Step) bool {
	for _, stmt := range s.Render() {
		if stmt.Safety == NonTransactional {
			return true
		}
	}
	return false
}
