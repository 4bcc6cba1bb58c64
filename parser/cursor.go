package parser

import (
	"fmt"

	"sysyc/token"
)

// Cursor walks an immutable token slice. Peeking never consumes, so
// arbitrary lookahead is a read at an offset, and Clone is a copy of the index.
type Cursor struct {
	toks []token.Token
	pos  int
	eof  token.Token
}

// New returns a cursor over toks. toks need not end with EOF; reads past the
// end yield a synthetic EOF token.
func New(toks []token.Token) *Cursor {
	c := &Cursor{toks: toks}
	c.eof = token.Token{Type: token.EOF}
	if n := len(toks); n > 0 {
		last := toks[n-1]
		c.eof.Line, c.eof.Column = last.Line, last.Column
	}
	return c
}

// Cur returns the current token.
func (c *Cursor) Cur() token.Token {
	return c.Peek(0)
}

// Peek returns the token n positions after the current one.
func (c *Cursor) Peek(n int) token.Token {
	if i := c.pos + n; i >= 0 && i < len(c.toks) {
		return c.toks[i]
	}
	return c.eof
}

func (c *Cursor) CurTokenIs(t token.TokenType) bool {
	return c.Cur().Type == t
}

func (c *Cursor) PeekTokenIs(n int, t token.TokenType) bool {
	return c.Peek(n).Type == t
}

// AtEOF reports whether every token has been consumed.
func (c *Cursor) AtEOF() bool {
	return c.CurTokenIs(token.EOF)
}

// Next consumes and returns the current token.
func (c *Cursor) Next() token.Token {
	tok := c.Cur()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return tok
}

// Expect consumes the current token if it has type t.
func (c *Cursor) Expect(t token.TokenType) (token.Token, error) {
	tok := c.Cur()
	if tok.Type != t {
		return tok, &token.CompileError{
			Kind:  token.SyntaxError,
			Token: tok,
			Msg:   fmt.Sprintf("expected %q, got %q", t.String(), tok.String()),
		}
	}
	c.Next()
	return tok, nil
}

// Accept consumes the current token if it has type t and reports whether it did.
func (c *Cursor) Accept(t token.TokenType) bool {
	if c.CurTokenIs(t) {
		c.Next()
		return true
	}
	return false
}

// Clone returns an independent cursor at the same position.
func (c *Cursor) Clone() *Cursor {
	cp := *c
	return &cp
}

// FindTopLevel scans forward from the current token for the first token of
// one of the given types that is not nested inside (), [] or {}. It stops at
// EOF or when a closing bracket would leave the starting nesting level.
func (c *Cursor) FindTopLevel(types ...token.TokenType) (token.Token, bool) {
	depth := 0
	for i := 0; ; i++ {
		tok := c.Peek(i)
		if tok.Type == token.EOF {
			return tok, false
		}
		if depth == 0 {
			for _, t := range types {
				if tok.Type == t {
					return tok, true
				}
			}
		}
		switch tok.Type {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if depth == 0 {
				return tok, false
			}
			depth--
		}
	}
}
