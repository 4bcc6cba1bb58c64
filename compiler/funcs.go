package compiler

import (
	"fmt"
	"strings"

	"sysyc/token"
)

// funcDef parses FuncDef: ('int' | 'void') Ident '(' [Params] ')' Block.
//
// Parameters and the top level of the body share one scope. Scalar
// parameters are copied into entry-block slots so they can be assigned;
// array parameters are used through their pointer directly.
func (c *Compiler) funcDef() {
	retTok := c.cur.Next()
	var hasReturn bool
	switch retTok.Type {
	case token.KW_INT:
		hasReturn = true
	case token.VOID:
		hasReturn = false
	default:
		c.errorf(token.SyntaxError, retTok, "expected return type, got %q", retTok.Literal)
	}

	name := c.expect(token.IDENT)
	c.expect(token.LPAREN)

	c.Symbols.EnterScope(FuncScope)
	c.names.Reset()
	c.pre.Reset()
	c.body.Reset()

	var (
		params []Shape
		pnames []token.Token
	)
	if !c.cur.CurTokenIs(token.RPAREN) {
		for {
			ptok, shape := c.param()
			pnames = append(pnames, ptok)
			params = append(params, shape)
			if !c.cur.Accept(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RPAREN)

	fn, err := c.Symbols.DefineFunction(name.Literal, hasReturn, params)
	c.check(err, name)
	fn.Token = name
	c.fn = fn

	for i, ptok := range pnames {
		v := &Variable{Name: ptok.Literal, Shape: params[i], Storage: paramReg(i)}
		if v.Shape.IsScalar() {
			v.Storage = c.names.FreshPre()
			c.emitPre("%s = alloca i32", v.Storage)
			c.emitPre("store i32 %s, i32* %s", paramReg(i), v.Storage)
		}
		c.check(c.Symbols.DefineVariable(v), ptok)
	}

	// the entry block branches to b_1 once the body is done
	c.names.AdvanceSibling()
	c.terminated = true
	c.openBlock(c.names.Label())

	c.expect(token.LBRACE)
	c.items()

	if hasReturn {
		c.terminate("ret i32 0")
	} else {
		c.terminate("ret void")
	}

	c.Symbols.LeaveScope()
	c.fn = nil

	fmt.Fprintf(&c.funcs, "%s\n%s    br label %%b_1\n%s}\n\n", fn.Header(), c.pre.String(), c.body.String())
}

// param parses 'int' Ident ['[' ']' {'[' ConstExp ']'}].
func (c *Compiler) param() (token.Token, Shape) {
	c.expect(token.KW_INT)
	name := c.expect(token.IDENT)

	if !c.cur.CurTokenIs(token.LBRACK) {
		return name, nil
	}
	c.cur.Next()
	c.expect(token.RBRACK)

	return name, append(Shape{0}, c.dimensions()...)
}

// call lowers Ident '(' [Args] ')'. Arrays are passed as a pointer to their
// first element.
func (c *Compiler) call(fold bool) Value {
	name := c.cur.Next()
	if fold {
		c.errorf(token.TypeMismatch, name, "call to %q in constant expression", name.Literal)
	}
	fn := c.lookupFunc(name)
	c.expect(token.LPAREN)

	var (
		args []Value
		toks []token.Token
	)
	if !c.cur.CurTokenIs(token.RPAREN) {
		for {
			toks = append(toks, c.cur.Cur())
			args = append(args, c.exp(false))
			if !c.cur.Accept(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RPAREN)

	if len(args) != len(fn.Params) {
		c.errorf(token.TypeMismatch, name, "%q expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	texts := make([]string, len(args))
	for i, a := range args {
		p := fn.Params[i]
		if a.Void {
			c.errorf(token.TypeMismatch, toks[i], "void function result used as argument %d of %q", i+1, fn.Name)
		}
		if !a.Shape.Matches(p) {
			c.errorf(token.TypeMismatch, toks[i], "cannot use %s as argument %d of %q of type %s", a.Shape, i+1, fn.Name, p)
		}
		if p.IsScalar() {
			texts[i] = "i32 " + a.Text
			continue
		}
		texts[i] = paramType(p) + " " + c.decay(a)
	}

	inst := fmt.Sprintf("call %s @%s(%s)", fn.RetType(), fn.Name, strings.Join(texts, ", "))
	if !fn.HasReturn {
		c.emit("%s", inst)
		return Value{Void: true}
	}

	reg := c.names.FreshValue()
	c.emit("%s = %s", reg, inst)
	return Value{Text: reg}
}
