package catalog

// Parameter is one function parameter in declaration order.
type Parameter struct {
	Name     string
	DataType string
	Mode     string // IN, OUT, INOUT, VARIADIC
}

// Function represents one function or procedure overload. Definition is the
// full text from pg_get_functiondef and is what gets rendered, so the record
// round-trips bodies byte-for-byte.
type Function struct {
	Schema          string
	Name            string
	Args            string // identity argument string, part of the identifier
	Language        string
	Returns         string
	Volatility      string // IMMUTABLE, STABLE, VOLATILE
	Strict          bool
	SecurityDefiner bool
	IsProcedure     bool
	Parameters      []Parameter
	Definition      string
	Comment         string
	Deps            []ObjectID
}

// ID returns the function's identifier.
func (f *Function) ID() ObjectID { return FunctionID(f.Schema, f.Name, f.Args) }

// DependsOn returns the function's dependencies.
func (f *Function) DependsOn() []ObjectID { return f.Deps }

// Equal reports whether two overloads with the same identity are identical.
// Definition carries the body and all attributes, but the structured fields
// still participate so attribute-only drift never hides behind an unchanged
// body text.
func (f *Function) Equal(other *Function) bool {
	if f.Schema != other.Schema || f.Name != other.Name || f.Args != other.Args {
		return false
	}
	if f.Language != other.Language || f.Returns != other.Returns || f.Volatility != other.Volatility {
		return false
	}
	if f.Strict != other.Strict || f.SecurityDefiner != other.SecurityDefiner || f.IsProcedure != other.IsProcedure {
		return false
	}
	if len(f.Parameters) != len(other.Parameters) {
		return false
	}
	for i := range f.Parameters {
		if f.Parameters[i] != other.Parameters[i] {
			return false
		}
	}
	return f.Definition == other.Definition && f.Comment == other.Comment
}

// Aggregate represents one aggregate overload. PostgreSQL exposes no
// pretty-printer for aggregates, so the CREATE statement is reconstructed
// from parts at render time.
type Aggregate struct {
	Schema           string
	Name             string
	Args             string // identity argument string, part of the identifier
	StateType        string // formatted, arrays preserved for rendering
	TransitionFunc   string
	FinalFunc        string
	CombineFunc      string
	InitialCondition string
	Comment          string
	Deps             []ObjectID
}

// ID returns the aggregate's identifier.
func (a *Aggregate) ID() ObjectID { return AggregateID(a.Schema, a.Name, a.Args) }

// DependsOn returns the aggregate's dependencies. The state type's array
// element unwrapping happens at load time, so Deps already points at base
// types.
func (a *Aggregate) DependsOn() []ObjectID { return a.Deps }

// Equal reports whether two aggregates are identical for diffing purposes.
func (a *Aggregate) Equal(other *Aggregate) bool {
	return a.Schema == other.Schema &&
		a.Name == other.Name &&
		a.Args == other.Args &&
		a.StateType == other.StateType &&
		a.TransitionFunc == other.TransitionFunc &&
		a.FinalFunc == other.FinalFunc &&
		a.CombineFunc == other.CombineFunc &&
		a.InitialCondition == other.InitialCondition &&
		a.Comment == other.Comment
}
