package compiler

type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	FuncScope
	BlockScope
)

type Scope[T any] struct {
	Elems     map[string]T
	ScopeKind ScopeKind
}

func NewScope[T any](sk ScopeKind) Scope[T] {
	return Scope[T]{
		Elems:     make(map[string]T),
		ScopeKind: sk,
	}
}

func PushScope[T any](scopes *[]Scope[T], sk ScopeKind) {
	*scopes = append(*scopes, NewScope[T](sk))
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 1 {
		panic("cannot pop global scope")
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put binds name in the innermost scope. It refuses to rebind a name that the
// innermost scope already holds; shadowing an outer scope is fine.
func Put[T any](scopes []Scope[T], name string, elem T) bool {
	inner := scopes[len(scopes)-1].Elems
	if _, ok := inner[name]; ok {
		return false
	}
	inner[name] = elem
	return true
}

// Get searches from the innermost scope outward. Globals stay visible from
// every function, so the walk does not stop at function boundaries.
func Get[T any](scopes []Scope[T], name string) (T, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
	}

	var zero T
	return zero, false
}
