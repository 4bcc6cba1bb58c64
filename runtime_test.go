package main

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsPrefix(values []string, prefix string) bool {
	for _, value := range values {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func TestRuntimeCompileFlagsDefaultPortable(t *testing.T) {
	t.Setenv(runtimeMarchEnv, "")

	flags := runtimeCompileFlags()

	assert.Contains(t, flags, OPT_LEVEL)
	assert.Contains(t, flags, C_STD)
	assert.False(t, containsPrefix(flags, "-march="), "expected portable default without -march, got %v", flags)

	if runtime.GOOS == OS_WINDOWS {
		assert.NotContains(t, flags, FPIC)
		return
	}
	assert.Contains(t, flags, FPIC)
}

func TestRuntimeCompileFlagsMarchOverride(t *testing.T) {
	t.Setenv(runtimeMarchEnv, "x86-64")
	assert.True(t, slices.Contains(runtimeCompileFlags(), "-march=x86-64"))
}

func TestRuntimeCompileFlagsMarchFlagPassthrough(t *testing.T) {
	t.Setenv(runtimeMarchEnv, "-march=native")
	assert.True(t, slices.Contains(runtimeCompileFlags(), "-march=native"))
}

func TestCCOverride(t *testing.T) {
	t.Setenv(ccEnv, "")
	assert.Equal(t, "clang", cc())

	t.Setenv(ccEnv, "gcc")
	assert.Equal(t, "gcc", cc())
}

func TestIsHashDir(t *testing.T) {
	assert.True(t, isHashDir("0123abcd"))
	assert.False(t, isHashDir("0123abc"))
	assert.False(t, isHashDir("0123abcz"))
	assert.False(t, isHashDir(RUNTIME_DIR))
}

func TestRuntimeInfo(t *testing.T) {
	short, full, n, err := runtimeInfo()
	require.NoError(t, err)

	assert.Len(t, full, 64)
	assert.Equal(t, full[:8], short)
	assert.Equal(t, 1, n)

	// flags are part of the hash
	t.Setenv(runtimeMarchEnv, "native")
	short2, _, _, err := runtimeInfo()
	require.NoError(t, err)
	assert.NotEqual(t, short, short2)
}

func TestExtractRuntime(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rt")
	require.NoError(t, extractRuntime(dir))

	for _, name := range []string{"sylib.c", "sylib.h"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	src, err := os.ReadFile(filepath.Join(dir, "sylib.c"))
	require.NoError(t, err)
	for _, fn := range []string{"getint", "getch", "getarray", "putint", "putch", "putarray"} {
		assert.Contains(t, string(src), fn+"(")
	}
}

func TestPruneRuntimes(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-30 * 24 * time.Hour)

	names := []string{"00000001", "00000002", "00000003"}
	for i, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(p, 0o755))
		mt := old.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "keepme"), 0o755))

	pruneRuntimes(root, 1, 7*24*time.Hour)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"00000003", "keepme"}, left)
}

func TestPruneKeepsRecent(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"0000000a", "0000000b", "0000000c"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}

	pruneRuntimes(root, 1, 7*24*time.Hour)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStaleRuntimesKeepsNewest(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-30 * 24 * time.Hour)

	// created newest first so directory order differs from age order
	for i, name := range []string{"0000000c", "0000000b", "0000000a"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(p, 0o755))
		mt := old.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	stale := staleRuntimes(root, 2, time.Hour)
	assert.Equal(t, []string{filepath.Join(root, "0000000a")}, stale)

	assert.Empty(t, staleRuntimes(root, 3, time.Hour))
	assert.Empty(t, staleRuntimes(filepath.Join(root, "missing"), 0, 0))
}

func TestCachedRuntime(t *testing.T) {
	dir := t.TempDir()

	_, ok := cachedRuntime(dir, "sum", 1)
	assert.False(t, ok, "no hash file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hash"), []byte("sum"), 0o644))
	_, ok = cachedRuntime(dir, "sum", 1)
	assert.False(t, ok, "no objects")

	obj := filepath.Join(dir, "sylib"+OBJ_SUFFIX)
	require.NoError(t, os.WriteFile(obj, nil, 0o644))
	objs, ok := cachedRuntime(dir, "sum", 1)
	require.True(t, ok)
	assert.Equal(t, []string{obj}, objs)

	_, ok = cachedRuntime(dir, "other", 1)
	assert.False(t, ok, "stale hash")
}
