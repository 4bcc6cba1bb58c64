package compiler

import (
	"fmt"

	"sysyc/token"
)

// decl parses Decl: ['const'] 'int' Def {',' Def} ';'.
func (c *Compiler) decl() {
	isConst := c.cur.Accept(token.CONST)
	c.expect(token.KW_INT)
	for {
		c.def(isConst)
		if !c.cur.Accept(token.COMMA) {
			break
		}
	}
	c.expect(token.SEMICOLON)
}

// def parses one Ident {'[' ConstExp ']'} ['=' InitVal]. A local variable is
// in scope inside its own initializer, like in C. Constants and globals are
// bound after their initializer, which must fold without them.
func (c *Compiler) def(isConst bool) {
	name := c.expect(token.IDENT)
	v := &Variable{
		Name:  name.Literal,
		Const: isConst,
		Shape: c.dimensions(),
	}

	hasInit := c.cur.Accept(token.ASSIGN)
	if isConst && !hasInit {
		c.errorf(token.SyntaxError, c.cur.Cur(), "constant %q must be initialized", name.Literal)
	}

	if c.Symbols.IsGlobal() {
		c.globalDef(v, hasInit)
		c.check(c.Symbols.DefineVariable(v), name)
		return
	}

	c.localDef(v, name, hasInit)
}

// globalDef emits @name = global|constant <init>. Global initializers are
// folded, and scalar values are kept on the variable for later folding.
func (c *Compiler) globalDef(v *Variable, hasInit bool) {
	v.Storage = "@" + v.Name

	var init *constInit
	switch {
	case !hasInit:
		init = zeroConst(v.Shape)
	case v.Shape.IsScalar():
		v.Value = c.scalarInit(true).Int
		init = scalarConst(v.Value)
	default:
		init = c.globalInit(v.Shape)
	}

	kind := "global"
	if v.Const {
		kind = "constant"
	}
	fmt.Fprintf(&c.globals, "%s = %s %s\n", v.Storage, kind, init)
}

// localDef allocates the variable in the entry block and stores its
// initializer at the point of declaration. Local constants are folded too
// and still get a stack slot.
func (c *Compiler) localDef(v *Variable, name token.Token, hasInit bool) {
	v.Storage = c.names.FreshPre()
	c.emitPre("%s = alloca %s", v.Storage, v.Shape.Type())

	if !v.Const {
		c.check(c.Symbols.DefineVariable(v), name)
	}

	switch {
	case !hasInit:
	case !v.Shape.IsScalar():
		c.localInit(v, nil, v.Shape)
	default:
		val := c.scalarInit(v.Const)
		if v.Const {
			v.Value = val.Int
		}
		c.emit("store i32 %s, i32* %s", val.Text, v.Storage)
	}

	if v.Const {
		c.check(c.Symbols.DefineVariable(v), name)
	}
}
