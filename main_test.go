package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRPath(t *testing.T) {
	assert.Equal(t, "a/b.ll", irPath("a/b.sy"))
	assert.Equal(t, "prog.ll", irPath("prog"))
}

func TestDefaultCacheEnv(t *testing.T) {
	t.Setenv(cacheEnv, "/tmp/sysyc-cache")
	assert.Equal(t, "/tmp/sysyc-cache", defaultCache())

	t.Setenv(cacheEnv, "")
	assert.True(t, strings.HasSuffix(defaultCache(), "sysyc"))
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "a.ll")

	require.NoError(t, writeOutput(path, "first"))
	require.NoError(t, writeOutput(path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "p.sy")
	require.NoError(t, os.WriteFile(src, []byte("int main() { putint(1 + 2); return 0; }\n"), 0o644))

	dst := irPath(src)
	require.NoError(t, compileFile(context.Background(), src, dst, true, false))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "define i32 @main() {")
	assert.Contains(t, string(data), "call void @putint(i32 %x1)")
}

func TestCompileFileError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.sy")
	require.NoError(t, os.WriteFile(src, []byte("int main() { return x; }\n"), 0o644))

	err := compileFile(context.Background(), src, irPath(src), false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable \"x\"")

	_, err = os.Stat(irPath(src))
	assert.True(t, os.IsNotExist(err))
}

func TestVersionString(t *testing.T) {
	v := versionString()
	assert.True(t, strings.HasPrefix(v, "sysyc "+Version))
	assert.NotContains(t, v, "commit:")
}
