package compiler

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"sysyc/lexer"
	"sysyc/parser"
	"sysyc/token"
)

// Compiler lowers one compilation unit to textual LLVM IR in a single pass.
// Parsing and emission are fused: every grammar rule appends its IR as soon
// as it has recognized enough input, so there is no syntax tree.
//
// IR of the function being defined goes to two buffers. pre holds the
// unnamed entry block: allocas for every local and the copies of scalar
// parameters. body holds the labeled blocks b_1, b_2, ... The entry block
// ends with a branch to b_1 once the body is complete.
type Compiler struct {
	cur     *parser.Cursor
	Symbols *SymbolTable
	names   Namer
	fn      *Function // function being defined, nil at global level

	pre     strings.Builder
	body    strings.Builder
	globals strings.Builder
	funcs   strings.Builder

	// terminated is set once the current block has its terminator. Dead
	// instructions that follow open a fresh unreachable block.
	terminated bool
}

// bailout carries the first error up through the recursive descent.
type bailout struct {
	err *token.CompileError
}

func NewCompiler(toks []token.Token) *Compiler {
	return &Compiler{
		cur:     parser.New(toks),
		Symbols: NewSymbolTable(),
	}
}

// Compile lowers a token sequence ending in EOF. Compilation stops at the
// first error, which is always a *token.CompileError.
func Compile(toks []token.Token) (string, error) {
	return NewCompiler(toks).Compile()
}

// CompileSource runs the lexer and the compiler on one source file. name is
// used for diagnostics only.
func CompileSource(ctx context.Context, name string, src []byte) (ir string, err error) {
	tr := tlog.SpanFromContext(ctx)

	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		return "", errors.Wrap(err, "%v", name)
	}

	tr.V("tokens").Printw("tokenized", "name", name, "tokens", len(toks))

	c := NewCompiler(toks)

	ir, err = c.Compile()
	if err != nil {
		return "", errors.Wrap(err, "%v", name)
	}

	tr.Printw("compiled", "name", name, "functions", len(c.Symbols.Functions()), "ir_bytes", len(ir))

	if tr.If("ir") {
		tr.Printw("ir", "name", name, "text", ir)
	}

	return ir, nil
}

func (c *Compiler) Compile() (ir string, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}

		b, ok := p.(bailout)
		if !ok {
			panic(p)
		}

		ir, err = "", b.err
	}()

	c.unit()

	return c.output(), nil
}

// unit parses CompUnit: a sequence of global declarations and function
// definitions. Type Ident '(' starts a function.
func (c *Compiler) unit() {
	for !c.cur.AtEOF() {
		if c.cur.PeekTokenIs(2, token.LPAREN) {
			c.funcDef()
			continue
		}
		c.decl()
	}

	c.checkMain()
}

func (c *Compiler) checkMain() {
	eof := c.cur.Cur()

	fn, err := c.Symbols.LookupFunction("main")
	if err != nil || fn.Builtin {
		c.errorf(token.ConstraintViolation, eof, "program has no main function")
	}
	if !fn.HasReturn {
		c.errorf(token.ConstraintViolation, fn.Token, "main must return int")
	}
	if len(fn.Params) != 0 {
		c.errorf(token.ConstraintViolation, fn.Token, "main must take no parameters")
	}
}

// output assembles the module: runtime declarations, globals, then the
// function definitions in source order.
func (c *Compiler) output() string {
	var sb strings.Builder
	sb.WriteString(builtinDecls())
	sb.WriteByte('\n')
	sb.WriteString(c.globals.String())
	sb.WriteByte('\n')
	sb.WriteString(c.funcs.String())
	return sb.String()
}

// errorf aborts compilation.
func (c *Compiler) errorf(kind token.ErrorKind, tok token.Token, format string, args ...any) {
	panic(bailout{err: &token.CompileError{
		Kind:  kind,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	}})
}

// check aborts on a non-nil error. Errors without a position get tok's.
func (c *Compiler) check(err error, tok token.Token) {
	if err == nil {
		return
	}

	ce, ok := err.(*token.CompileError)
	if !ok {
		ce = &token.CompileError{Kind: token.SyntaxError, Msg: err.Error()}
	}
	if ce.Token.Line == 0 {
		ce.Token = tok
	}

	panic(bailout{err: ce})
}

func (c *Compiler) expect(t token.TokenType) token.Token {
	tok, err := c.cur.Expect(t)
	c.check(err, tok)
	return tok
}

func (c *Compiler) lookupVar(tok token.Token) *Variable {
	v, err := c.Symbols.LookupVariable(tok.Literal)
	c.check(err, tok)
	return v
}

func (c *Compiler) lookupFunc(tok token.Token) *Function {
	fn, err := c.Symbols.LookupFunction(tok.Literal)
	c.check(err, tok)
	return fn
}

// emitPre appends an instruction to the entry block.
func (c *Compiler) emitPre(format string, args ...any) {
	c.pre.WriteString("    ")
	fmt.Fprintf(&c.pre, format, args...)
	c.pre.WriteByte('\n')
}

// emit appends a non-terminator instruction to the current block.
func (c *Compiler) emit(format string, args ...any) {
	c.ensureBlock()
	c.body.WriteString("    ")
	fmt.Fprintf(&c.body, format, args...)
	c.body.WriteByte('\n')
}

// terminate ends the current block. A block that already ended keeps its
// terminator and the new one is dropped as unreachable.
func (c *Compiler) terminate(format string, args ...any) {
	if c.terminated {
		return
	}
	c.body.WriteString("    ")
	fmt.Fprintf(&c.body, format, args...)
	c.body.WriteByte('\n')
	c.terminated = true
}

func (c *Compiler) branch(label string) {
	c.terminate("br label %%%s", label)
}

func (c *Compiler) condBranch(cond, then, els string) {
	c.terminate("br i1 %s, label %%%s, label %%%s", cond, then, els)
}

// openBlock starts the block label. An open predecessor falls through to it
// with an explicit branch.
func (c *Compiler) openBlock(label string) {
	if !c.terminated {
		c.branch(label)
	}
	c.body.WriteString(label)
	c.body.WriteString(":\n")
	c.terminated = false
}

// ensureBlock opens a sibling block for code after a terminator.
func (c *Compiler) ensureBlock() {
	if !c.terminated {
		return
	}
	c.names.AdvanceSibling()
	c.openBlock(c.names.Label())
}
