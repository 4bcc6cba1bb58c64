package compiler

import (
	"strconv"
	"strings"
)

// Namer hands out virtual register names and basic block labels for one
// function. A block label is derived from the block path, the position of the
// block among its siblings at every nesting level: path [1 2 1] is b_1_2_1.
type Namer struct {
	path   []int
	loops  []int // path length at the time each active loop opened its condition block
	preVar int
	val    int
}

// Reset clears all state at the start of a function definition.
func (n *Namer) Reset() {
	n.path = n.path[:0]
	n.loops = n.loops[:0]
	n.preVar = 0
	n.val = 0
}

// FreshPre returns the next pre-entry register (%1, %2, ...). These are
// unnamed LLVM values and number on from the implicit %0 entry block.
func (n *Namer) FreshPre() string {
	n.preVar++
	return "%" + strconv.Itoa(n.preVar)
}

// FreshValue returns the next value register (%x1, %x2, ...).
func (n *Namer) FreshValue() string {
	n.val++
	return "%x" + strconv.Itoa(n.val)
}

func render(path []int) string {
	var sb strings.Builder
	sb.WriteByte('b')
	for _, p := range path {
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// Label is the label of the current block.
func (n *Namer) Label() string {
	return render(n.path)
}

// PeekSibling is the label the next sibling block will get.
func (n *Namer) PeekSibling() string {
	if len(n.path) == 0 {
		return render([]int{1})
	}
	last := len(n.path) - 1
	n.path[last]++
	s := render(n.path)
	n.path[last]--
	return s
}

// ChildLabel is the label of the first block nested in the current one.
func (n *Namer) ChildLabel() string {
	return n.Label() + "_1"
}

func (n *Namer) EnterChild() {
	n.path = append(n.path, 1)
}

// LeaveChild returns to the parent level and forgets loops whose condition
// block was opened at or below the level being left.
func (n *Namer) LeaveChild() {
	n.path = n.path[:len(n.path)-1]
	for len(n.loops) > 0 && n.loops[len(n.loops)-1] >= len(n.path) {
		n.loops = n.loops[:len(n.loops)-1]
	}
}

func (n *Namer) AdvanceSibling() {
	if len(n.path) == 0 {
		n.path = append(n.path, 1)
		return
	}
	n.path[len(n.path)-1]++
}

// OpenLoop records the current block as the condition block of a new loop.
func (n *Namer) OpenLoop() {
	n.loops = append(n.loops, len(n.path))
}

// InLoop reports whether a loop is lexically active.
func (n *Namer) InLoop() bool {
	return len(n.loops) > 0
}

// ContinueTarget is the condition block of the innermost loop.
func (n *Namer) ContinueTarget() (string, bool) {
	if !n.InLoop() {
		return "", false
	}
	depth := n.loops[len(n.loops)-1]
	return render(n.path[:depth]), true
}

// BreakTarget is the block following the innermost loop at its own level.
func (n *Namer) BreakTarget() (string, bool) {
	if !n.InLoop() {
		return "", false
	}
	depth := n.loops[len(n.loops)-1]
	n.path[depth-1]++
	s := render(n.path[:depth])
	n.path[depth-1]--
	return s, true
}
