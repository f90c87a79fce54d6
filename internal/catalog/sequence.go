package catalog

// Sequence represents a sequence. A sequence owned by a SERIAL or identity
// column records its owner; ownership produces the table<->sequence edge pair
// that the orderer's phase ranking breaks.
type Sequence struct {
	Schema        string
	Name          string
	DataType      string
	Start         int64
	Increment     int64
	MinValue      *int64
	MaxValue      *int64
	Cache         int64
	Cycle         bool
	OwnedByTable  string
	OwnedByColumn string
	Comment       string
	Deps          []ObjectID
}

// ID returns the sequence's identifier.
func (s *Sequence) ID() ObjectID { return SequenceID(s.Schema, s.Name) }

// DependsOn returns the sequence's dependencies.
func (s *Sequence) DependsOn() []ObjectID { return s.Deps }

// Equal reports whether two sequences are identical for diffing purposes.
func (s *Sequence) Equal(other *Sequence) bool {
	if s.Schema != other.Schema || s.Name != other.Name || s.DataType != other.DataType {
		return false
	}
	if s.Start != other.Start || s.Increment != other.Increment || s.Cache != other.Cache || s.Cycle != other.Cycle {
		return false
	}
	if !equalInt64Ptr(s.MinValue, other.MinValue) || !equalInt64Ptr(s.MaxValue, other.MaxValue) {
		return false
	}
	if s.OwnedByTable != other.OwnedByTable || s.OwnedByColumn != other.OwnedByColumn {
		return false
	}
	return s.Comment == other.Comment
}

func equalInt64Ptr(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
