// Package verifier runs LLVM's own parser and module verifier over emitted IR.
package verifier

import (
	"context"
	"os"

	"tinygo.org/x/go-llvm"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// VerifyFile parses the IR file at path and verifies the resulting module.
func VerifyFile(ctx context.Context, path string) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "verify ir", "path", path)
	defer tr.Finish("err", &err)

	buf, err := llvm.NewMemoryBufferFromFile(path)
	if err != nil {
		return errors.Wrap(err, "read %v", path)
	}

	lctx := llvm.NewContext()
	defer lctx.Dispose()

	// ParseIR takes ownership of buf.
	mod, err := lctx.ParseIR(buf)
	if err != nil {
		return errors.Wrap(err, "parse %v", path)
	}
	defer mod.Dispose()

	if err := llvm.VerifyModule(mod, llvm.ReturnStatusAction); err != nil {
		return errors.Wrap(err, "verify %v", path)
	}

	tr.V("verify").Printw("module ok", "functions", countFunctions(mod))

	return nil
}

// Verify checks IR held in memory.
func Verify(ctx context.Context, ir string) error {
	f, err := os.CreateTemp("", "sysyc-*.ll")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(f.Name())

	_, err = f.WriteString(ir)
	if e := f.Close(); err == nil {
		err = e
	}
	if err != nil {
		return errors.Wrap(err, "write temp file")
	}

	return VerifyFile(ctx, f.Name())
}

func countFunctions(mod llvm.Module) (n int) {
	for fn := mod.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
		if !fn.IsDeclaration() {
			n++
		}
	}
	return n
}
