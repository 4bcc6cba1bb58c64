package compiler

// Builtins are the runtime I/O functions every unit can call without
// declaring them. The order is the order of their declare lines.
var Builtins = []*Function{
	{Name: "getint", HasReturn: true, Builtin: true},
	{Name: "getch", HasReturn: true, Builtin: true},
	{Name: "getarray", HasReturn: true, Params: []Shape{{0}}, Builtin: true},
	{Name: "putint", Params: []Shape{{}}, Builtin: true},
	{Name: "putch", Params: []Shape{{}}, Builtin: true},
	{Name: "putarray", Params: []Shape{{}, {0}}, Builtin: true},
}
