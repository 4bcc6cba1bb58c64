package compiler

import (
	"strconv"

	"sysyc/token"
)

// elemAddr emits one getelementptr per subscript and returns the address
// reached and the shape left over. A decayed shape is already a pointer to
// its element, so its first step takes a single index.
func (c *Compiler) elemAddr(v *Variable, idx []string) (string, Shape) {
	addr, shape := v.Storage, v.Shape
	for _, i := range idx {
		reg := c.names.FreshValue()
		if shape.Decayed() {
			elem := shape.Elem().Type()
			c.emit("%s = getelementptr %s, %s* %s, i32 %s", reg, elem, elem, addr, i)
		} else {
			t := shape.Type()
			c.emit("%s = getelementptr %s, %s* %s, i32 0, i32 %s", reg, t, t, addr, i)
		}
		addr, shape = reg, shape.Elem()
	}
	return addr, shape
}

// decay turns an array value into a pointer to its first element.
func (c *Compiler) decay(v Value) string {
	if v.Shape.Decayed() {
		return v.Text
	}
	reg := c.names.FreshValue()
	t := v.Shape.Type()
	c.emit("%s = getelementptr %s, %s* %s, i32 0, i32 0", reg, t, t, v.Text)
	return reg
}

// dimension parses one [ConstExp] bound of a declaration.
func (c *Compiler) dimension() int {
	c.expect(token.LBRACK)
	tok := c.cur.Cur()
	n := c.constExp()
	if n <= 0 {
		c.errorf(token.ConstraintViolation, tok, "array dimension must be positive, got %d", n)
	}
	c.expect(token.RBRACK)
	return int(n)
}

// dimensions parses the bounds following a declared name.
func (c *Compiler) dimensions() Shape {
	var s Shape
	for c.cur.CurTokenIs(token.LBRACK) {
		s = append(s, c.dimension())
	}
	return s
}

// openInit consumes the '{' of an initializer for shape s.
func (c *Compiler) openInit(s Shape) {
	tok := c.cur.Cur()
	if tok.Type != token.LBRACE {
		c.errorf(token.SyntaxError, tok, "expected '{' to initialize %s, got %q", s, tok.Literal)
	}
	c.cur.Next()
}

// initElems walks the elements of one brace level of an initializer for
// shape s. elem is called with the position of every element present and
// returns after consuming it. The number of elements present is returned.
func (c *Compiler) initElems(s Shape, elem func(i int)) int {
	c.openInit(s)
	n := 0
	if !c.cur.CurTokenIs(token.RBRACE) {
		for {
			if n == s[0] {
				c.errorf(token.ConstraintViolation, c.cur.Cur(), "too many initializers for %s", s)
			}
			elem(n)
			n++
			if !c.cur.Accept(token.COMMA) {
				break
			}
		}
	}
	c.expect(token.RBRACE)
	return n
}

// scalarInit parses an initializer element that must be a plain expression.
func (c *Compiler) scalarInit(fold bool) Value {
	tok := c.cur.Cur()
	if tok.Type == token.LBRACE {
		c.errorf(token.SyntaxError, tok, "braces around scalar initializer")
	}
	return c.scalarExp(fold)
}

// localInit stores every element of the sub-array at front. Elements the
// initializer leaves out are stored as zero.
func (c *Compiler) localInit(v *Variable, front []string, s Shape) {
	n := c.initElems(s, func(i int) {
		idx := withIndex(front, i)
		if s.Elem().IsScalar() {
			addr, _ := c.elemAddr(v, idx)
			val := c.scalarInit(v.Const)
			c.emit("store i32 %s, i32* %s", val.Text, addr)
			return
		}
		c.localInit(v, idx, s.Elem())
	})

	for i := n; i < s[0]; i++ {
		c.zeroFill(v, withIndex(front, i), s.Elem())
	}
}

func (c *Compiler) zeroFill(v *Variable, idx []string, s Shape) {
	if s.IsScalar() {
		addr, _ := c.elemAddr(v, idx)
		c.emit("store i32 0, i32* %s", addr)
		return
	}
	for i := 0; i < s[0]; i++ {
		c.zeroFill(v, withIndex(idx, i), s.Elem())
	}
}

func withIndex(front []string, i int) []string {
	idx := make([]string, len(front), len(front)+1)
	copy(idx, front)
	return append(idx, strconv.Itoa(i))
}

// globalInit parses a brace initializer for a global of shape s and returns
// the folded element tree.
func (c *Compiler) globalInit(s Shape) *constInit {
	init := &constInit{Shape: s}
	c.initElems(s, func(int) {
		if s.Elem().IsScalar() {
			init.Elems = append(init.Elems, scalarConst(c.scalarInit(true).Int))
			return
		}
		init.Elems = append(init.Elems, c.globalInit(s.Elem()))
	})
	return init
}
