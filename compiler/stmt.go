package compiler

import (
	"sysyc/token"
)

func (c *Compiler) blockItem() {
	switch c.cur.Cur().Type {
	case token.CONST, token.KW_INT:
		c.decl()
	default:
		c.stmt()
	}
}

// items parses BlockItems up to and including the closing '}'.
func (c *Compiler) items() {
	for !c.cur.CurTokenIs(token.RBRACE) {
		if c.cur.AtEOF() {
			c.errorf(token.SyntaxError, c.cur.Cur(), "expected \"}\" before end of input")
		}
		c.blockItem()
	}
	c.cur.Next()
}

// block parses a nested '{' BlockItems '}' in its own scope. It does not
// start a new basic block.
func (c *Compiler) block() {
	c.expect(token.LBRACE)
	c.Symbols.EnterScope(BlockScope)
	c.items()
	c.Symbols.LeaveScope()
}

func (c *Compiler) stmt() {
	tok := c.cur.Cur()
	switch tok.Type {
	case token.LBRACE:
		c.block()
	case token.IF:
		c.ifStmt()
	case token.WHILE:
		c.whileStmt()
	case token.BREAK:
		c.breakStmt()
	case token.CONTINUE:
		c.continueStmt()
	case token.RETURN:
		c.returnStmt()
	case token.SEMICOLON:
		c.cur.Next()
	case token.IDENT:
		if t, _ := c.cur.FindTopLevel(token.ASSIGN, token.SEMICOLON); t.Type == token.ASSIGN {
			c.assign()
			return
		}
		c.exprStmt()
	default:
		c.exprStmt()
	}
}

// exprStmt evaluates an expression for its side effects.
func (c *Compiler) exprStmt() {
	c.exp(false)
	c.expect(token.SEMICOLON)
}

// assign parses LVal '=' Exp ';'. The target must be a fully indexed
// non-constant variable.
func (c *Compiler) assign() {
	tok := c.cur.Next()
	v := c.lookupVar(tok)
	if v.Const {
		c.errorf(token.TypeMismatch, tok, "cannot assign to constant %q", tok.Literal)
	}

	idx := c.indices()
	if len(idx) != len(v.Shape) {
		c.errorf(token.TypeMismatch, tok, "cannot assign to %q: %s needs %d indices, got %d",
			tok.Literal, v.Shape, len(v.Shape), len(idx))
	}
	addr, _ := c.elemAddr(v, idx)

	c.expect(token.ASSIGN)
	val := c.scalarExp(false)
	c.expect(token.SEMICOLON)

	c.emit("store i32 %s, i32* %s", val.Text, addr)
}

func (c *Compiler) returnStmt() {
	tok := c.cur.Next()

	if c.cur.Accept(token.SEMICOLON) {
		if c.fn.HasReturn {
			c.errorf(token.TypeMismatch, tok, "missing return value in function %q returning int", c.fn.Name)
		}
		c.terminate("ret void")
		return
	}

	if !c.fn.HasReturn {
		c.errorf(token.TypeMismatch, tok, "void function %q cannot return a value", c.fn.Name)
	}
	val := c.scalarExp(false)
	c.expect(token.SEMICOLON)
	c.terminate("ret i32 %s", val.Text)
}
