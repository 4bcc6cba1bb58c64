package compiler

import (
	"fmt"
	"strings"
)

// paramType is the IR type a parameter of shape s is passed as.
func paramType(s Shape) string {
	if s.IsScalar() {
		return "i32"
	}
	return s.PtrType()
}

// Declaration renders the extern declaration of a runtime function.
func (f *Function) Declaration() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = paramType(p)
	}
	return fmt.Sprintf("declare %s @%s(%s)", f.RetType(), f.Name, strings.Join(params, ", "))
}

// Header renders the opening line of a definition. Parameter K is bound to %pK.
func (f *Function) Header() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %s", paramType(p), paramReg(i))
	}
	return fmt.Sprintf("define %s @%s(%s) {", f.RetType(), f.Name, strings.Join(params, ", "))
}

func paramReg(i int) string {
	return fmt.Sprintf("%%p%d", i+1)
}

// builtinDecls is the fixed preamble of every output.
func builtinDecls() string {
	var sb strings.Builder
	for _, b := range Builtins {
		sb.WriteString(b.Declaration())
		sb.WriteByte('\n')
	}
	return sb.String()
}
