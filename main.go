package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/flock"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"sysyc/compiler"
	"sysyc/verifier"
)

const (
	SY_SUFFIX = ".sy"
	IR_SUFFIX = ".ll"

	OPT_LEVEL = "-O2"

	cacheEnv = "SYSYC_CACHE"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "translate SysY sources to LLVM IR",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file (single input only), - for stdout"),
			cli.NewFlag("verify", false, "run the LLVM verifier on the result"),
			cli.NewFlag("check", false, "check basic block structure of the result"),
		},
	}

	buildCmd := &cli.Command{
		Name:        "build",
		Description: "compile a SysY source and link it with the runtime into an executable",
		Action:      buildAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "executable path"),
		},
	}

	versionCmd := &cli.Command{
		Name:   "version",
		Action: versionAct,
	}

	app := &cli.Command{
		Name:        "sysyc",
		Description: "sysyc compiles SysY programs to LLVM IR",
		Commands: []*cli.Command{
			compileCmd,
			buildCmd,
			versionCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// defaultCache resolves the cache directory: SYSYC_CACHE, or the platform
// user cache location.
func defaultCache() string {
	if env := os.Getenv(cacheEnv); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case OS_WINDOWS:
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "sysyc")
		}
		return filepath.Join(homeDir, "AppData", "Local", "sysyc")

	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "sysyc")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "sysyc")
		}
		return filepath.Join(homeDir, ".cache", "sysyc")
	}
}

// irPath is where the IR of src goes unless an output is given.
func irPath(src string) string {
	return strings.TrimSuffix(src, SY_SUFFIX) + IR_SUFFIX
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("no input files")
	}

	out := c.String("output")
	if out != "" && len(c.Args) > 1 {
		return errors.New("-o with %d input files", len(c.Args))
	}

	for _, a := range c.Args {
		dst := out
		if dst == "" {
			dst = irPath(a)
		}

		err = compileFile(ctx, a, dst, c.Bool("check"), c.Bool("verify"))
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}
	}

	return nil
}

// compileFile compiles src and writes the IR to dst, or to stdout for "-".
func compileFile(ctx context.Context, src, dst string, check, verify bool) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile file", "src", src, "dst", dst)
	defer tr.Finish("err", &err)

	source, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, "read")
	}

	ir, err := compiler.CompileSource(ctx, src, source)
	if err != nil {
		return err
	}

	if check {
		cfg, err := compiler.CheckIR(ir)
		if err != nil {
			return errors.Wrap(err, "block structure")
		}

		tr.Printw("blocks ok", "functions", len(cfg.Funcs))
	}

	if dst == "-" {
		_, err = os.Stdout.WriteString(ir)
		if err != nil {
			return err
		}

		if verify {
			return verifier.Verify(ctx, ir)
		}

		return nil
	}

	err = writeOutput(dst, ir)
	if err != nil {
		return err
	}

	if verify {
		return verifier.VerifyFile(ctx, dst)
	}

	return nil
}

// writeOutput replaces path with data under an advisory lock so parallel
// builds of the same source do not interleave.
func writeOutput(path, data string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output dir")
		}
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock output")
	}
	defer func() {
		e := lock.Unlock()
		if err == nil {
			err = e
		}
		os.Remove(path + ".lock")
	}()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}

	return os.Rename(tmp, path)
}

func buildAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("build takes exactly one source file")
	}

	src := c.Args[0]
	bin := c.String("output")
	if bin == "" {
		bin = strings.TrimSuffix(filepath.Base(src), SY_SUFFIX)
	}

	cacheDir := defaultCache()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}

	llFile := filepath.Join(cacheDir, "build", filepath.Base(irPath(src)))
	if err := compileFile(ctx, src, llFile, true, true); err != nil {
		return errors.Wrap(err, "compile %v", src)
	}

	rtObjs, err := prepareRuntime(cacheDir)
	if err != nil {
		return errors.Wrap(err, "runtime")
	}

	if err := genBinary(llFile, bin, rtObjs); err != nil {
		return errors.Wrap(err, "link %v", bin)
	}

	tlog.Printw("built", "src", src, "bin", bin)

	return nil
}

// genBinary compiles the IR and links it with the runtime objects.
func genBinary(llFile, bin string, rtObjs []string) error {
	args := []string{OPT_LEVEL, "-Wno-override-module"}

	if runtime.GOOS == "darwin" {
		// Mach-O linker (ld64.lld) wants -dead_strip
		args = append(args, "-Wl,-dead_strip")
	} else {
		// ELF linkers (ld, lld) accept --gc-sections
		args = append(args, "-Wl,--gc-sections")
	}

	args = append(args, llFile)
	args = append(args, rtObjs...)
	args = append(args, "-o", bin)

	out, err := exec.Command(cc(), args...).CombinedOutput()
	if err != nil {
		return errors.Wrap(err, "%s", out)
	}

	return nil
}

func versionAct(c *cli.Command) error {
	printVersion()
	return nil
}
