package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sysyc/lexer"
	"sysyc/token"
)

func mustTokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	toks, err := lexer.Tokenize(input)
	require.NoError(t, err, "tokenize %q", input)
	return toks
}

func TestCursorPeekDoesNotConsume(t *testing.T) {
	c := New(mustTokenize(t, "int main ( )"))

	require.Equal(t, token.LPAREN, c.Peek(2).Type)
	require.Equal(t, token.KW_INT, c.Cur().Type)
	require.True(t, c.PeekTokenIs(1, token.IDENT))
	require.Equal(t, token.EOF, c.Peek(100).Type)

	c.Next()
	c.Next()
	require.True(t, c.CurTokenIs(token.LPAREN))
}

func TestCursorExpect(t *testing.T) {
	c := New(mustTokenize(t, "( x"))

	_, err := c.Expect(token.LPAREN)
	require.NoError(t, err)

	tok, err := c.Expect(token.RPAREN)
	require.Error(t, err)
	require.Equal(t, "x", tok.Literal)

	ce, ok := err.(*token.CompileError)
	require.True(t, ok)
	require.Equal(t, token.SyntaxError, ce.Kind)
	require.Contains(t, ce.Msg, `expected ")"`)

	// a failed Expect leaves the cursor in place
	require.True(t, c.CurTokenIs(token.IDENT))
}

func TestCursorCloneIsIndependent(t *testing.T) {
	c := New(mustTokenize(t, "a = b ;"))
	lookahead := c.Clone()
	lookahead.Next()
	lookahead.Next()

	require.True(t, lookahead.CurTokenIs(token.IDENT))
	require.Equal(t, "b", lookahead.Cur().Literal)
	require.Equal(t, "a", c.Cur().Literal)
}

func TestCursorNextStopsAtEOF(t *testing.T) {
	c := New(mustTokenize(t, ";"))
	c.Next()
	require.True(t, c.AtEOF())
	c.Next()
	c.Next()
	require.True(t, c.AtEOF())
}

func TestFindTopLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		found bool
		want  token.TokenType
	}{
		{"assignment", "a[i] = f(x);", true, token.ASSIGN},
		{"expression statement", "f(a, b);", true, token.SEMICOLON},
		{"nested assign ignored", "f(g[1]) ;", true, token.SEMICOLON},
		{"unbalanced close stops", "a ) = 1;", false, token.RPAREN},
		{"eof", "a b c", false, token.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(mustTokenize(t, tt.input))
			tok, ok := c.FindTopLevel(token.ASSIGN, token.SEMICOLON)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.want, tok.Type)
			// scanning never moves the cursor
			require.Equal(t, mustTokenize(t, tt.input)[0], c.Cur())
		})
	}
}
