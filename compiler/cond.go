package compiler

import (
	"sysyc/token"
)

// ifStmt lowers 'if' '(' Cond ')' Stmt ['else' Stmt].
//
// The condition is tested in the current block k. The then arm is lowered in
// children of k and the block after it is k+1. Without an else arm k+1 is the
// merge block. With one, k+1 is the else entry: it branches into its first
// child where the else arm is lowered, and k+2 is the merge block.
func (c *Compiler) ifStmt() {
	c.cur.Next()
	c.expect(token.LPAREN)
	cond := c.condition()
	c.expect(token.RPAREN)

	then := c.names.ChildLabel()
	next := c.names.PeekSibling()
	c.condBranch(cond, then, next)

	c.arm(then)
	c.names.AdvanceSibling()

	if !c.cur.Accept(token.ELSE) {
		c.openBlock(next)
		return
	}

	merge := c.names.PeekSibling()
	c.branch(merge)
	c.openBlock(next)

	c.arm(c.names.ChildLabel())
	c.names.AdvanceSibling()
	c.openBlock(merge)
}

// arm lowers one statement in the first child block of the current block.
func (c *Compiler) arm(label string) {
	c.names.EnterChild()
	c.openBlock(label)
	c.stmt()
	c.names.LeaveChild()
}
