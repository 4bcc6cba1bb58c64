package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstInitString(t *testing.T) {
	tests := []struct {
		name     string
		init     *constInit
		expected string
	}{
		{
			name:     "Scalar",
			init:     scalarConst(-3),
			expected: "i32 -3",
		},
		{
			name:     "ZeroScalar",
			init:     zeroConst(nil),
			expected: "i32 0",
		},
		{
			name:     "ZeroArray",
			init:     zeroConst(Shape{2, 3}),
			expected: "[2 x [3 x i32]] zeroinitializer",
		},
		{
			name: "PaddedRow",
			init: &constInit{
				Shape: Shape{3},
				Elems: []*constInit{scalarConst(1), scalarConst(2)},
			},
			expected: "[3 x i32] [i32 1, i32 2, i32 0]",
		},
		{
			name: "WrittenZeros",
			init: &constInit{
				Shape: Shape{2},
				Elems: []*constInit{scalarConst(0), scalarConst(0)},
			},
			expected: "[2 x i32] zeroinitializer",
		},
		{
			name: "Nested",
			init: &constInit{
				Shape: Shape{3, 2},
				Elems: []*constInit{
					{Shape: Shape{2}},
					{Shape: Shape{2}, Elems: []*constInit{scalarConst(0), scalarConst(5)}},
				},
			},
			expected: "[3 x [2 x i32]] [[2 x i32] zeroinitializer, [2 x i32] [i32 0, i32 5], [2 x i32] zeroinitializer]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.init.String())
		})
	}
}
