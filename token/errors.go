package token

import "fmt"

// ErrorKind classifies a CompileError. Every kind is fatal.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	DuplicateDefinition
	UndefinedSymbol
	TypeMismatch
	ArithmeticError
	ConstraintViolation
)

var errorKinds = [...]string{
	LexicalError:        "lexical error",
	SyntaxError:         "syntax error",
	DuplicateDefinition: "duplicate definition",
	UndefinedSymbol:     "undefined symbol",
	TypeMismatch:        "type mismatch",
	ArithmeticError:     "arithmetic error",
	ConstraintViolation: "constraint violation",
}

func (k ErrorKind) String() string {
	if 0 <= k && int(k) < len(errorKinds) {
		return errorKinds[k]
	}
	return fmt.Sprintf("error(%d)", int(k))
}

type CompileError struct {
	Kind  ErrorKind
	Token Token
	Msg   string
}

func (e *CompileError) Error() string {
	if e.Token.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Token.Line, e.Token.Column, e.Kind, e.Msg)
}
