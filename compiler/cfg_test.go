package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCFG(t *testing.T) {
	ir := preamble + `@g = global i32 0

define void @f(i32 %p1) {
    %1 = alloca i32
    store i32 %p1, i32* %1
    br label %b_1
b_1:
    %x1 = load i32, i32* %1
    %x2 = icmp ne i32 %x1, 0
    br i1 %x2, label %b_1_1, label %b_2
b_1_1:
    br label %b_2
b_2:
    ret void
}

define i32 @main() {
    br label %b_1
b_1:
    ret i32 0
}

`
	cfg, err := CheckIR(ir)
	require.NoError(t, err)
	require.Len(t, cfg.Funcs, 2)

	f := cfg.Funcs[0]
	assert.Equal(t, "f", f.Name)
	require.Len(t, f.Blocks, 4)
	assert.Equal(t, "", f.Blocks[0].Label)
	assert.Equal(t, []string{"b_1"}, f.Blocks[0].Succs)
	assert.Len(t, f.Blocks[0].Insts, 3)

	b1, ok := f.Block("b_1")
	require.True(t, ok)
	assert.Equal(t, []string{"b_1_1", "b_2"}, b1.Succs)

	b2, ok := f.Block("b_2")
	require.True(t, ok)
	term, ok := b2.Terminator()
	require.True(t, ok)
	assert.Equal(t, "ret void", term)
	assert.Empty(t, b2.Succs)

	assert.Equal(t, "main", cfg.Funcs[1].Name)
}

func TestCFGAnalysisErrors(t *testing.T) {
	tests := []struct {
		name        string
		ir          string
		expectError string
	}{
		{
			name:        "DuplicateLabel",
			ir:          "define void @f() {\n    br label %b_1\nb_1:\n    br label %b_1\nb_1:\n    ret void\n}\n",
			expectError: `@f: duplicate label "b_1"`,
		},
		{
			name:        "MissingTerminator",
			ir:          "define void @f() {\n    br label %b_1\nb_1:\n    call void @putint(i32 1)\n}\n",
			expectError: "@f: block b_1 does not end in a terminator",
		},
		{
			name:        "EmptyBlock",
			ir:          "define void @f() {\n    br label %b_1\nb_1:\nb_2:\n    ret void\n}\n",
			expectError: "@f: block b_1 does not end in a terminator",
		},
		{
			name:        "TerminatorNotLast",
			ir:          "define void @f() {\n    br label %b_1\nb_1:\n    ret void\n    call void @putint(i32 1)\n    ret void\n}\n",
			expectError: `@f: block b_1: terminator "ret void" is not last`,
		},
		{
			name:        "UnknownTarget",
			ir:          "define void @f() {\n    br label %b_9\nb_1:\n    ret void\n}\n",
			expectError: `@f: block entry branches to unknown label "b_9"`,
		},
		{
			name:        "Reassigned",
			ir:          "define i32 @f() {\n    br label %b_1\nb_1:\n    %x1 = add i32 1, 2\n    %x1 = add i32 1, 3\n    ret i32 %x1\n}\n",
			expectError: "@f: register %x1 assigned twice",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := BuildCFG(tc.ir)
			require.NoError(t, err)

			cfg.Analyze()
			require.NotEmpty(t, cfg.Errors)
			assert.Contains(t, cfg.Errors[0].Error(), tc.expectError)
		})
	}
}

func TestBuildCFGMalformed(t *testing.T) {
	_, err := BuildCFG("define void @f() {\n    ret void\n")
	assert.ErrorContains(t, err, `function "f" is not closed`)

	_, err = BuildCFG("define void f() {\n}\n")
	assert.ErrorContains(t, err, "malformed function header")
}

// Every compiled program has a well formed block structure.
func TestCompiledProgramsPassAnalysis(t *testing.T) {
	programs := []string{
		`int main() { while (1) { if (getint()) break; else continue; } return 0; }`,
		`int main() { if (1) { return 1; } else { return 2; } }`,
		`void f() { return; } int main() { f(); return 0; putint(1); return 2; }`,
		`int main() { int a[10]; int n = getarray(a); while (n > 0) { n = n - 1; if (a[n] < 0) continue; putint(a[n]); } return 0; }`,
		`int main() { while (0) { while (0) { break; } continue; } { { } } ; return getch(); }`,
	}

	for _, src := range programs {
		ir := compileInput(t, src)

		cfg, err := CheckIR(ir)
		require.NoError(t, err, ir)
		assert.Empty(t, cfg.Errors)
	}
}
