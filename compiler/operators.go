package compiler

import (
	"sysyc/token"
)

// opInfo describes how a binary operator lowers and folds.
type opInfo struct {
	Inst  string // instruction, with the predicate for comparisons
	Cmp   bool   // produces i1 that is widened back to i32
	Logic bool   // operands are normalized to 0/1 before Inst is applied
	// Fold evaluates the operator at compile time. ok is false on division
	// or modulo by zero.
	Fold func(a, b int32) (v int32, ok bool)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// binaryOps maps an operator token to its lowering. Arithmetic wraps like i32.
var binaryOps = map[token.TokenType]opInfo{
	// --- Arithmetic Operators ---
	token.ADD: {Inst: "add", Fold: func(a, b int32) (int32, bool) { return a + b, true }},
	token.SUB: {Inst: "sub", Fold: func(a, b int32) (int32, bool) { return a - b, true }},
	token.MUL: {Inst: "mul", Fold: func(a, b int32) (int32, bool) { return a * b, true }},
	token.QUO: {Inst: "sdiv", Fold: func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}},
	token.REM: {Inst: "srem", Fold: func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}},

	// --- Comparison Operators ---
	token.LSS: {Inst: "icmp slt", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a < b), true }},
	token.GTR: {Inst: "icmp sgt", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a > b), true }},
	token.LEQ: {Inst: "icmp sle", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a <= b), true }},
	token.GEQ: {Inst: "icmp sge", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a >= b), true }},
	token.EQL: {Inst: "icmp eq", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a == b), true }},
	token.NEQ: {Inst: "icmp ne", Cmp: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a != b), true }},

	// --- Logical Operators ---
	// Both sides are always evaluated.
	token.LAND: {Inst: "and", Logic: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a != 0 && b != 0), true }},
	token.LOR:  {Inst: "or", Logic: true, Fold: func(a, b int32) (int32, bool) { return boolToInt(a != 0 || b != 0), true }},
}
