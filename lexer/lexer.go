package lexer

import (
	"fmt"
	"strconv"

	"sysyc/token"
)

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
	err          string // reason for the last ILLEGAL token
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1}
	l.readRune()
	return l
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return nil, &token.CompileError{
				Kind:  token.LexicalError,
				Token: tok,
				Msg:   l.err,
			}
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	if !l.skipWhitespaceAndComments() {
		return l.illegal(l.line, l.column, "/*", "unterminated block comment")
	}

	line, col := l.line, l.column
	var tok token.Token

	switch l.curr {
	case '=':
		tok = l.either('=', token.EQL, token.ASSIGN)
	case '!':
		tok = l.either('=', token.NEQ, token.NOT)
	case '<':
		tok = l.either('=', token.LEQ, token.LSS)
	case '>':
		tok = l.either('=', token.GEQ, token.GTR)
	case '&':
		if l.peekRune() != '&' {
			return l.illegal(line, col, "&", "expected && but found lone &")
		}
		l.readRune()
		tok = token.Token{Type: token.LAND, Literal: "&&"}
	case '|':
		if l.peekRune() != '|' {
			return l.illegal(line, col, "|", "expected || but found lone |")
		}
		l.readRune()
		tok = token.Token{Type: token.LOR, Literal: "||"}
	case '+':
		tok = newToken(token.ADD, l.curr)
	case '-':
		tok = newToken(token.SUB, l.curr)
	case '*':
		tok = newToken(token.MUL, l.curr)
	case '/':
		tok = newToken(token.QUO, l.curr)
	case '%':
		tok = newToken(token.REM, l.curr)
	case ',':
		tok = newToken(token.COMMA, l.curr)
	case ';':
		tok = newToken(token.SEMICOLON, l.curr)
	case '(':
		tok = newToken(token.LPAREN, l.curr)
	case ')':
		tok = newToken(token.RPAREN, l.curr)
	case '[':
		tok = newToken(token.LBRACK, l.curr)
	case ']':
		tok = newToken(token.RBRACK, l.curr)
	case '{':
		tok = newToken(token.LBRACE, l.curr)
	case '}':
		tok = newToken(token.RBRACE, l.curr)
	case 0:
		if l.position >= len(l.input) {
			return token.Token{Type: token.EOF, Line: line, Column: col}
		}
		return l.illegal(line, col, "\x00", "unexpected NUL character")
	default:
		if isLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Line, tok.Column = line, col
			return tok
		} else if isDigit(l.curr) {
			return l.readNumber(line, col)
		}
		return l.illegal(line, col, string(l.curr), fmt.Sprintf("unexpected character %q", l.curr))
	}

	l.readRune()
	tok.Line, tok.Column = line, col
	return tok
}

// either consumes a second rune when it equals next, producing a two-char token.
func (l *Lexer) either(next rune, two, one token.TokenType) token.Token {
	if l.peekRune() == next {
		curr := l.curr
		l.readRune()
		return token.Token{Type: two, Literal: string(curr) + string(l.curr)}
	}
	return newToken(one, l.curr)
}

func (l *Lexer) illegal(line, col int, literal, reason string) token.Token {
	l.err = reason
	return token.Token{Type: token.ILLEGAL, Literal: literal, Line: line, Column: col}
}

// skipWhitespaceAndComments reports false on an unterminated block comment.
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		switch {
		case l.curr == ' ' || l.curr == '\t' || l.curr == '\n' || l.curr == '\r' || l.curr == '\v' || l.curr == '\f':
			l.readRune()
		case l.curr == '/' && l.peekRune() == '/':
			for l.curr != '\n' && l.position < len(l.input) {
				l.readRune()
			}
		case l.curr == '/' && l.peekRune() == '*':
			l.readRune()
			l.readRune()
			for !(l.curr == '*' && l.peekRune() == '/') {
				if l.position >= len(l.input) {
					return false
				}
				l.readRune()
			}
			l.readRune()
			l.readRune()
		default:
			return true
		}
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for IsLetterOrDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readNumber reads a decimal, octal (leading 0) or hexadecimal (0x/0X) literal.
func (l *Lexer) readNumber(line, col int) token.Token {
	position := l.position
	base := 10
	digits := position

	if l.curr == '0' {
		switch p := l.peekRune(); {
		case p == 'x' || p == 'X':
			base = 16
			l.readRune()
			l.readRune()
			digits = l.position
			for isHexDigit(l.curr) {
				l.readRune()
			}
		case isDigit(p):
			base = 8
			l.readRune()
			digits = l.position
			for isDigit(l.curr) {
				l.readRune()
			}
		default:
			l.readRune()
		}
	} else {
		for isDigit(l.curr) {
			l.readRune()
		}
	}

	literal := string(l.input[position:l.position])
	if isLetter(l.curr) {
		return l.illegal(line, col, literal+string(l.curr), fmt.Sprintf("malformed integer literal %q", literal+string(l.curr)))
	}
	if digits == l.position {
		return l.illegal(line, col, literal, fmt.Sprintf("malformed integer literal %q", literal))
	}

	v, err := strconv.ParseUint(string(l.input[digits:l.position]), base, 32)
	if err != nil {
		return l.illegal(line, col, literal, fmt.Sprintf("invalid integer literal %q", literal))
	}

	return token.Token{
		Type:    token.INT,
		Literal: literal,
		Line:    line,
		Column:  col,
		Int:     int32(uint32(v)),
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func IsLetterOrDigit(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func newToken(tokenType token.TokenType, curr rune) token.Token {
	return token.Token{Type: tokenType, Literal: string(curr)}
}
