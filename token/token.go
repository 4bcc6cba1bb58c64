package token

import "strconv"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	literal_beg
	// Identifiers + literals
	IDENT // add, foobar, x, y, ...
	INT   // 1343456, 017, 0x1F
	literal_end

	keyword_beg
	CONST
	KW_INT
	VOID
	IF
	ELSE
	WHILE
	BREAK
	CONTINUE
	RETURN
	keyword_end

	operator_beg
	// Operators and delimiters
	ASSIGN // =
	NOT    // !

	ADD // +
	SUB // -
	MUL // *
	QUO // /
	REM // %

	LAND // &&
	LOR  // ||

	LPAREN    // (
	LBRACK    // [
	LBRACE    // {
	COMMA     // ,
	SEMICOLON // ;

	RPAREN // )
	RBRACK // ]
	RBRACE // }
	operator_end

	comparison_beg
	EQL // ==
	LSS // <
	GTR // >

	NEQ // !=
	LEQ // <=
	GEQ // >=
	comparison_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT: "IDENT",
	INT:   "INT",

	CONST:    "const",
	KW_INT:   "int",
	VOID:     "void",
	IF:       "if",
	ELSE:     "else",
	WHILE:    "while",
	BREAK:    "break",
	CONTINUE: "continue",
	RETURN:   "return",

	ASSIGN: "=",
	NOT:    "!",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",
	REM: "%",

	LAND: "&&",
	LOR:  "||",

	LPAREN:    "(",
	LBRACK:    "[",
	LBRACE:    "{",
	COMMA:     ",",
	SEMICOLON: ";",

	RPAREN: ")",
	RBRACK: "]",
	RBRACE: "}",

	EQL: "==",
	LSS: "<",
	GTR: ">",

	NEQ: "!=",
	LEQ: "<=",
	GEQ: ">=",
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keyword_end-(keyword_beg+1))
	for i := keyword_beg + 1; i < keyword_end; i++ {
		keywords[tokens[i]] = i
	}
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Int     int32 // value of an INT literal
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && comparison_end > t.Type
}

func (t Token) IsKeyword() bool {
	return keyword_beg < t.Type && keyword_end > t.Type
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT:
		return t.Literal
	}
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}
