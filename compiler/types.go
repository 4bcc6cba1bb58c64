package compiler

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir/types"
)

// Shape lists array dimension sizes, outermost first. An empty shape is an
// int scalar. A leading 0 marks a decayed array parameter whose outer
// dimension is unknown and which is held as a pointer to its element.
type Shape []int

func (s Shape) IsScalar() bool {
	return len(s) == 0
}

// Decayed reports whether the outer dimension was erased.
func (s Shape) Decayed() bool {
	return len(s) > 0 && s[0] == 0
}

// Elem is the shape of one element of the outer dimension.
func (s Shape) Elem() Shape {
	return s[1:]
}

// Matches reports whether an argument of shape s can bind to a parameter of
// shape param. A 0 in the parameter accepts any size at that position.
func (s Shape) Matches(param Shape) bool {
	if len(s) != len(param) {
		return false
	}
	for i, d := range param {
		if d != 0 && d != s[i] {
			return false
		}
	}
	return true
}

// LLType builds the LLVM type of a value of shape s. Decayed shapes have no
// value type of their own; use PtrType.
func (s Shape) LLType() types.Type {
	var t types.Type = types.I32
	for i := len(s) - 1; i >= 0; i-- {
		t = types.NewArray(uint64(s[i]), t)
	}
	return t
}

// Type is the IR spelling of LLType, e.g. [2 x [3 x i32]].
func (s Shape) Type() string {
	return s.LLType().LLString()
}

// PtrType is the IR type of a pointer to storage of shape s. A decayed shape
// points at its element, so int a[][3] is [3 x i32]*.
func (s Shape) PtrType() string {
	if s.Decayed() {
		return types.NewPointer(s.Elem().LLType()).LLString()
	}
	return types.NewPointer(s.LLType()).LLString()
}

// String renders the shape the way it is written in source: int, int[4], int[][3].
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteString("int")
	for _, d := range s {
		sb.WriteByte('[')
		if d != 0 {
			sb.WriteString(strconv.Itoa(d))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
