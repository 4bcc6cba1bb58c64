package compiler

import (
	"slices"
	"strconv"

	"sysyc/token"
)

// Value is the result of lowering an expression.
type Value struct {
	Text  string // register, @global or decimal literal
	Shape Shape  // non-scalar: Text is a pointer to storage of this shape
	Const bool   // Int holds the value and Text is its literal
	Int   int32
	Void  bool // result of a call to a void function
}

func constValue(v int32) Value {
	return Value{Text: strconv.Itoa(int(v)), Const: true, Int: v}
}

// Precedence levels, loosest first. Each level is a left-associative chain
// of the next one.
var (
	lorOps  = []token.TokenType{token.LOR}
	landOps = []token.TokenType{token.LAND}
	eqOps   = []token.TokenType{token.EQL, token.NEQ}
	relOps  = []token.TokenType{token.LSS, token.GTR, token.LEQ, token.GEQ}
	addOps  = []token.TokenType{token.ADD, token.SUB}
	mulOps  = []token.TokenType{token.MUL, token.QUO, token.REM}
)

// exp parses Exp. With fold set, or at global level, the expression must be
// a compile-time constant and no IR is emitted.
func (c *Compiler) exp(fold bool) Value {
	return c.lOrExp(fold || c.Symbols.IsGlobal())
}

// scalarExp parses Exp and requires an int result.
func (c *Compiler) scalarExp(fold bool) Value {
	tok := c.cur.Cur()
	v := c.exp(fold)
	c.scalar(tok, v)
	return v
}

// constExp parses an Exp that must fold to a constant.
func (c *Compiler) constExp() int32 {
	return c.scalarExp(true).Int
}

// condition parses Cond and returns the i1 register to branch on.
func (c *Compiler) condition() string {
	tok := c.cur.Cur()
	v := c.lOrExp(false)
	c.scalar(tok, v)

	reg := c.names.FreshValue()
	c.emit("%s = icmp ne i32 %s, 0", reg, v.Text)
	return reg
}

func (c *Compiler) lOrExp(fold bool) Value {
	return c.binary(fold, lorOps, c.lAndExp)
}

func (c *Compiler) lAndExp(fold bool) Value {
	return c.binary(fold, landOps, c.eqExp)
}

func (c *Compiler) eqExp(fold bool) Value {
	return c.binary(fold, eqOps, c.relExp)
}

func (c *Compiler) relExp(fold bool) Value {
	return c.binary(fold, relOps, c.addExp)
}

func (c *Compiler) addExp(fold bool) Value {
	return c.binary(fold, addOps, c.mulExp)
}

func (c *Compiler) mulExp(fold bool) Value {
	return c.binary(fold, mulOps, c.unaryExp)
}

func (c *Compiler) binary(fold bool, ops []token.TokenType, next func(bool) Value) Value {
	lhs := next(fold)
	for {
		op := c.cur.Cur()
		if !slices.Contains(ops, op.Type) {
			return lhs
		}
		c.cur.Next()
		rhs := next(fold)
		lhs = c.apply(op, lhs, rhs, fold)
	}
}

// apply combines two operands. Folding is only done when requested; at run
// time every operator becomes an instruction even on literal operands.
func (c *Compiler) apply(op token.Token, lhs, rhs Value, fold bool) Value {
	info := binaryOps[op.Type]
	c.scalar(op, lhs)
	c.scalar(op, rhs)

	if fold {
		c.requireConst(op, lhs)
		c.requireConst(op, rhs)
		v, ok := info.Fold(lhs.Int, rhs.Int)
		if !ok {
			c.errorf(token.ArithmeticError, op, "division by zero in constant expression")
		}
		return constValue(v)
	}

	a, b := lhs.Text, rhs.Text
	if info.Logic {
		a = c.truth(a)
		b = c.truth(b)
	}

	reg := c.names.FreshValue()
	c.emit("%s = %s i32 %s, %s", reg, info.Inst, a, b)
	if info.Cmp {
		reg = c.widen(reg)
	}
	return Value{Text: reg}
}

// truth normalizes an int to 0 or 1.
func (c *Compiler) truth(v string) string {
	reg := c.names.FreshValue()
	c.emit("%s = icmp ne i32 %s, 0", reg, v)
	return c.widen(reg)
}

// widen zero-extends an i1 to i32.
func (c *Compiler) widen(bit string) string {
	reg := c.names.FreshValue()
	c.emit("%s = zext i1 %s to i32", reg, bit)
	return reg
}

func (c *Compiler) unaryExp(fold bool) Value {
	tok := c.cur.Cur()
	switch tok.Type {
	case token.ADD:
		c.cur.Next()
		v := c.unaryExp(fold)
		c.scalar(tok, v)
		return v

	case token.SUB:
		c.cur.Next()
		v := c.unaryExp(fold)
		c.scalar(tok, v)
		if fold {
			c.requireConst(tok, v)
			return constValue(-v.Int)
		}
		reg := c.names.FreshValue()
		c.emit("%s = sub i32 0, %s", reg, v.Text)
		return Value{Text: reg}

	case token.NOT:
		c.cur.Next()
		v := c.unaryExp(fold)
		c.scalar(tok, v)
		if fold {
			c.requireConst(tok, v)
			return constValue(boolToInt(v.Int == 0))
		}
		reg := c.names.FreshValue()
		c.emit("%s = icmp eq i32 %s, 0", reg, v.Text)
		return Value{Text: c.widen(reg)}

	case token.IDENT:
		if c.cur.PeekTokenIs(1, token.LPAREN) {
			return c.call(fold)
		}
	}

	return c.primaryExp(fold)
}

func (c *Compiler) primaryExp(fold bool) Value {
	tok := c.cur.Cur()
	switch tok.Type {
	case token.LPAREN:
		c.cur.Next()
		v := c.lOrExp(fold)
		c.expect(token.RPAREN)
		return v

	case token.INT:
		c.cur.Next()
		return constValue(tok.Int)

	case token.IDENT:
		return c.lvalRead(fold)
	}

	c.errorf(token.SyntaxError, tok, "unexpected %q in expression", tok.Literal)
	return Value{}
}

// lvalRead lowers an LVal used as a value. A fully indexed element is loaded;
// a partially indexed array is a pointer to the remaining sub-array.
func (c *Compiler) lvalRead(fold bool) Value {
	tok := c.cur.Next()
	v := c.lookupVar(tok)

	if fold {
		if !v.Const || !v.Shape.IsScalar() {
			c.errorf(token.TypeMismatch, tok, "%q is not a compile-time constant", tok.Literal)
		}
		return constValue(v.Value)
	}

	idx := c.indices()
	if len(idx) > len(v.Shape) {
		c.errorf(token.TypeMismatch, tok, "too many indices for %q of type %s", tok.Literal, v.Shape)
	}

	addr, rest := c.elemAddr(v, idx)
	if !rest.IsScalar() {
		return Value{Text: addr, Shape: rest}
	}

	reg := c.names.FreshValue()
	c.emit("%s = load i32, i32* %s", reg, addr)
	return Value{Text: reg}
}

// indices parses zero or more [Exp] subscripts.
func (c *Compiler) indices() []string {
	var idx []string
	for c.cur.Accept(token.LBRACK) {
		idx = append(idx, c.scalarExp(false).Text)
		c.expect(token.RBRACK)
	}
	return idx
}

func (c *Compiler) scalar(tok token.Token, v Value) {
	if v.Void {
		c.errorf(token.TypeMismatch, tok, "void function result used as a value")
	}
	if !v.Shape.IsScalar() {
		c.errorf(token.TypeMismatch, tok, "array of type %s used as a scalar", v.Shape)
	}
}

func (c *Compiler) requireConst(tok token.Token, v Value) {
	if !v.Const {
		c.errorf(token.TypeMismatch, tok, "operand of %q is not a compile-time constant", tok.Literal)
	}
}
