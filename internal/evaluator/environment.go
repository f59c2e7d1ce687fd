package evaluator

// Environment is the single flat variable→value mapping the language
// defines: one global scope, no shadowing, no nested frames.
type Environment struct {
	values map[string]Value
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Set creates or overwrites a binding. Lists are copied so that mutating one
// binding through Index assignment or Append never reaches back into the
// value that was assigned from.
func (e *Environment) Set(name string, v Value) {
	e.values[name] = v.Copy()
}

// Get looks up a binding. An absent name and a bound-but-Undefined value
// report distinct error messages, per the variable-lookup contract. Both
// failures are *RuntimeError, the same type every other evaluator failure
// reports.
func (e *Environment) Get(name string) (Value, error) {
	v, ok := e.values[name]
	if !ok {
		return Value{}, runtimeErrorf("Undefined variable '%s'", name)
	}
	if v.Kind == UndefinedKind {
		return Value{}, runtimeErrorf("Variable '%s' is undefined", name)
	}
	return v, nil
}

// GetList looks up a binding that must already be a list, for Index/
// IndexAssign/Append, which all share the same "is not a list" rejection.
func (e *Environment) GetList(name string) ([]Value, error) {
	v, ok := e.values[name]
	if !ok {
		return nil, runtimeErrorf("Undefined variable '%s'", name)
	}
	if v.Kind != ListKind {
		return nil, runtimeErrorf("Variable '%s' is not a list", name)
	}
	return v.List, nil
}

// MutateList lets statement evaluation replace the slice backing a list
// binding (append grows it, index-assign replaces one element) without
// round-tripping through Set's deep copy.
func (e *Environment) MutateList(name string, list []Value) {
	e.values[name] = Value{Kind: ListKind, List: list}
}
