package compiler

import (
	"strconv"
	"strings"
)

// constInit is a folded global initializer. A scalar leaf has no Shape. An
// aggregate holds the elements that were written; the rest are zero.
type constInit struct {
	Shape Shape
	Value int32
	Elems []*constInit
}

// isZero reports whether the initializer renders as all zeros.
func (ci *constInit) isZero() bool {
	if ci.Shape.IsScalar() {
		return ci.Value == 0
	}
	for _, e := range ci.Elems {
		if !e.isZero() {
			return false
		}
	}
	return true
}

// String renders the initializer as a typed IR constant, e.g.
// [2 x i32] [i32 1, i32 0]. All-zero aggregates collapse to zeroinitializer.
func (ci *constInit) String() string {
	var sb strings.Builder
	ci.write(&sb)
	return sb.String()
}

func (ci *constInit) write(sb *strings.Builder) {
	if ci.Shape.IsScalar() {
		sb.WriteString("i32 ")
		sb.WriteString(strconv.Itoa(int(ci.Value)))
		return
	}

	sb.WriteString(ci.Shape.Type())
	if ci.isZero() {
		sb.WriteString(" zeroinitializer")
		return
	}

	sb.WriteString(" [")
	for i := 0; i < ci.Shape[0]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i < len(ci.Elems) {
			ci.Elems[i].write(sb)
			continue
		}
		zeroConst(ci.Shape.Elem()).write(sb)
	}
	sb.WriteByte(']')
}

func zeroConst(s Shape) *constInit {
	return &constInit{Shape: s}
}

func scalarConst(v int32) *constInit {
	return &constInit{Value: v}
}
