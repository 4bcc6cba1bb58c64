package compiler

import (
	"sysyc/token"
)

// whileStmt lowers 'while' '(' Cond ')' Stmt.
//
// The condition gets a block of its own, the sibling after the current one,
// so that continue can branch back to it. The body is lowered in its
// children and the loop exits to the sibling after the condition block.
func (c *Compiler) whileStmt() {
	c.cur.Next()

	head := c.names.PeekSibling()
	c.names.AdvanceSibling()
	c.openBlock(head)
	c.names.OpenLoop()

	c.expect(token.LPAREN)
	cond := c.condition()
	c.expect(token.RPAREN)

	body := c.names.ChildLabel()
	exit := c.names.PeekSibling()
	c.condBranch(cond, body, exit)

	c.names.EnterChild()
	c.openBlock(body)
	c.stmt()
	c.branch(head)
	c.names.LeaveChild()

	c.names.AdvanceSibling()
	c.openBlock(exit)
}

func (c *Compiler) breakStmt() {
	tok := c.cur.Next()
	target, ok := c.names.BreakTarget()
	if !ok {
		c.errorf(token.ConstraintViolation, tok, "break statement not within a loop")
	}
	c.expect(token.SEMICOLON)
	c.branch(target)
}

func (c *Compiler) continueStmt() {
	tok := c.cur.Next()
	target, ok := c.names.ContinueTarget()
	if !ok {
		c.errorf(token.ConstraintViolation, tok, "continue statement not within a loop")
	}
	c.expect(token.SEMICOLON)
	c.branch(target)
}
