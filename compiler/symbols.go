package compiler

import (
	"fmt"

	"sysyc/token"
)

// Variable is a declared name bound to storage: a pre-entry register, a
// parameter register or a @global.
type Variable struct {
	Name    string
	Storage string
	Const   bool
	Shape   Shape
	Value   int32 // folded value of a constant scalar
}

// Function is a callable signature. Params holds one shape per parameter.
type Function struct {
	Name      string
	HasReturn bool
	Params    []Shape
	Builtin   bool
	Token     token.Token // name at the definition site
}

func (f *Function) RetType() string {
	if f.HasReturn {
		return "i32"
	}
	return "void"
}

// SymbolTable holds the flat function table and the stack of variable scopes.
// The bottom scope is the global scope and lives for the whole unit.
type SymbolTable struct {
	funcs  map[string]*Function
	order  []*Function
	Scopes []Scope[*Variable]
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		funcs:  make(map[string]*Function),
		Scopes: []Scope[*Variable]{NewScope[*Variable](GlobalScope)},
	}
	for _, b := range Builtins {
		fn := *b
		st.funcs[fn.Name] = &fn
	}
	return st
}

// IsGlobal reports whether only the global scope is open. Expressions fold
// to constants exactly when this holds.
func (st *SymbolTable) IsGlobal() bool {
	return len(st.Scopes) == 1
}

func (st *SymbolTable) EnterScope(sk ScopeKind) {
	PushScope(&st.Scopes, sk)
}

func (st *SymbolTable) LeaveScope() {
	PopScope(&st.Scopes)
}

func (st *SymbolTable) DefineFunction(name string, hasReturn bool, params []Shape) (*Function, error) {
	if _, ok := st.funcs[name]; ok {
		return nil, &token.CompileError{
			Kind: token.DuplicateDefinition,
			Msg:  fmt.Sprintf("redefinition of function %q", name),
		}
	}
	fn := &Function{Name: name, HasReturn: hasReturn, Params: params}
	st.funcs[name] = fn
	st.order = append(st.order, fn)
	return fn, nil
}

func (st *SymbolTable) DefineVariable(v *Variable) error {
	if !Put(st.Scopes, v.Name, v) {
		return &token.CompileError{
			Kind: token.DuplicateDefinition,
			Msg:  fmt.Sprintf("redefinition of %q in the same scope", v.Name),
		}
	}
	return nil
}

func (st *SymbolTable) LookupFunction(name string) (*Function, error) {
	if fn, ok := st.funcs[name]; ok {
		return fn, nil
	}
	return nil, &token.CompileError{
		Kind: token.UndefinedSymbol,
		Msg:  fmt.Sprintf("undefined function %q", name),
	}
}

func (st *SymbolTable) LookupVariable(name string) (*Variable, error) {
	if v, ok := Get(st.Scopes, name); ok {
		return v, nil
	}
	return nil, &token.CompileError{
		Kind: token.UndefinedSymbol,
		Msg:  fmt.Sprintf("undefined variable %q", name),
	}
}

// Functions returns user-defined functions in definition order.
func (st *SymbolTable) Functions() []*Function {
	return st.order
}
