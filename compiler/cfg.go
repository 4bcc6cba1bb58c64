package compiler

import (
	"bufio"
	"regexp"
	"strings"

	"tlog.app/go/errors"
)

// BasicBlock is one block of emitted IR. The entry block has no label.
type BasicBlock struct {
	Label string
	Insts []string
	Succs []string // labels named by the terminator
}

// Terminator returns the last instruction if it ends the block.
func (b *BasicBlock) Terminator() (string, bool) {
	if len(b.Insts) == 0 {
		return "", false
	}
	last := b.Insts[len(b.Insts)-1]
	return last, isTerminator(last)
}

// FuncCFG holds the blocks of one function definition in text order.
type FuncCFG struct {
	Name   string
	Blocks []*BasicBlock
}

// Block looks a block up by label.
func (f *FuncCFG) Block(label string) (*BasicBlock, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	return nil, false
}

// CFG is the block structure of a whole module, as recovered from its text.
type CFG struct {
	Funcs  []*FuncCFG
	Errors []error // Errors encountered during Analyze
}

var (
	defineRe = regexp.MustCompile(`^define \S+ @([A-Za-z_][A-Za-z0-9_]*)\(`)
	labelRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*):$`)
	targetRe = regexp.MustCompile(`label %([A-Za-z_][A-Za-z0-9_.]*)`)
	assignRe = regexp.MustCompile(`^(%[A-Za-z0-9_.]+) = `)
)

func isTerminator(inst string) bool {
	return strings.HasPrefix(inst, "br ") ||
		inst == "ret void" ||
		strings.HasPrefix(inst, "ret ") ||
		inst == "unreachable"
}

// BuildCFG splits module text into functions and basic blocks.
func BuildCFG(ir string) (*CFG, error) {
	cfg := &CFG{}

	var (
		fn  *FuncCFG
		blk *BasicBlock
	)

	sc := bufio.NewScanner(strings.NewReader(ir))
	sc.Buffer(nil, 1<<24)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)

		switch {
		case fn == nil && strings.HasPrefix(text, "define "):
			m := defineRe.FindStringSubmatch(text)
			if m == nil {
				return nil, errors.New("line %d: malformed function header", line)
			}
			fn = &FuncCFG{Name: m[1]}
			blk = &BasicBlock{}
			fn.Blocks = append(fn.Blocks, blk)

		case fn == nil:
			// declarations and globals

		case trimmed == "}":
			cfg.Funcs = append(cfg.Funcs, fn)
			fn, blk = nil, nil

		case labelRe.MatchString(text):
			blk = &BasicBlock{Label: labelRe.FindStringSubmatch(text)[1]}
			fn.Blocks = append(fn.Blocks, blk)

		case trimmed == "":

		default:
			blk.Insts = append(blk.Insts, trimmed)
			if isTerminator(trimmed) {
				for _, m := range targetRe.FindAllStringSubmatch(trimmed, -1) {
					blk.Succs = append(blk.Succs, m[1])
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	if fn != nil {
		return nil, errors.New("function %q is not closed", fn.Name)
	}

	return cfg, nil
}

// Analyze checks the block structure of every function: labels are unique,
// every block ends in exactly one terminator, branch targets exist and no
// register is assigned twice.
func (cfg *CFG) Analyze() {
	for _, fn := range cfg.Funcs {
		cfg.analyzeFunc(fn)
	}
}

func (cfg *CFG) analyzeFunc(fn *FuncCFG) {
	labels := make(map[string]struct{}, len(fn.Blocks))
	for _, b := range fn.Blocks[1:] {
		if _, ok := labels[b.Label]; ok {
			cfg.addError(fn, "duplicate label %q", b.Label)
		}
		labels[b.Label] = struct{}{}
	}

	regs := make(map[string]struct{})
	for _, b := range fn.Blocks {
		name := b.Label
		if name == "" {
			name = "entry"
		}

		if _, ok := b.Terminator(); !ok {
			cfg.addError(fn, "block %s does not end in a terminator", name)
		}

		for i, inst := range b.Insts {
			if i < len(b.Insts)-1 && isTerminator(inst) {
				cfg.addError(fn, "block %s: terminator %q is not last", name, inst)
			}
			if m := assignRe.FindStringSubmatch(inst); m != nil {
				if _, ok := regs[m[1]]; ok {
					cfg.addError(fn, "register %s assigned twice", m[1])
				}
				regs[m[1]] = struct{}{}
			}
		}

		for _, s := range b.Succs {
			if _, ok := labels[s]; !ok {
				cfg.addError(fn, "block %s branches to unknown label %q", name, s)
			}
		}
	}
}

func (cfg *CFG) addError(fn *FuncCFG, format string, args ...any) {
	cfg.Errors = append(cfg.Errors, errors.New("@%s: "+format, append([]any{fn.Name}, args...)...))
}

// CheckIR builds the CFG of ir and returns the first structural error.
func CheckIR(ir string) (*CFG, error) {
	cfg, err := BuildCFG(ir)
	if err != nil {
		return nil, err
	}

	cfg.Analyze()
	if len(cfg.Errors) != 0 {
		return cfg, cfg.Errors[0]
	}

	return cfg, nil
}
