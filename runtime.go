package main

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"hash"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

const (
	RUNTIME_DIR = "runtime"
	OBJ_SUFFIX  = ".o"
	OS_WINDOWS  = "windows"
	C_STD       = "-std=c11"
	FPIC        = "-fPIC"

	runtimeMarchEnv = "SYSYC_MARCH"
	ccEnv           = "SYSYC_CC"
)

//go:embed runtime
var runtimeFS embed.FS

// cc is the C compiler used for the runtime and for linking.
func cc() string {
	if env := os.Getenv(ccEnv); env != "" {
		return env
	}
	return "clang"
}

// isHashDir returns true if name is an 8-char hex string (matches shortHash format).
func isHashDir(name string) bool {
	if len(name) != 8 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// marchFlag turns SYSYC_MARCH into a compiler flag. Both "native" and
// "-march=native" are accepted. Unset means a portable build.
func marchFlag() string {
	march := strings.TrimSpace(os.Getenv(runtimeMarchEnv))
	if march == "" {
		return ""
	}
	if strings.HasPrefix(march, "-march=") {
		return march
	}
	return "-march=" + march
}

// runtimeCompileFlags returns the compiler flags used for runtime compilation.
// Used by both compileRuntime and metadataHash to keep them in sync.
func runtimeCompileFlags() []string {
	flags := []string{OPT_LEVEL, C_STD}
	if march := marchFlag(); march != "" {
		flags = append(flags, march)
	}
	if runtime.GOOS != OS_WINDOWS {
		flags = append(flags, FPIC)
	}
	return flags
}

// metadataHash hashes compiler settings and platform that affect runtime compilation.
func metadataHash(h hash.Hash) {
	h.Write([]byte(cc()))
	for _, flag := range runtimeCompileFlags() {
		h.Write([]byte(flag))
	}
	h.Write([]byte(runtime.GOOS))
	h.Write([]byte(runtime.GOARCH))
}

// runtimeInfo hashes the embedded runtime and counts its top-level .c files.
// Returns short hash (8 chars for directory name) and full hash (for collision check).
func runtimeInfo() (shortHash, fullHash string, srcCount int, err error) {
	h := sha256.New()
	metadataHash(h)
	err = fs.WalkDir(runtimeFS, RUNTIME_DIR, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		data, err := runtimeFS.ReadFile(path)
		if err != nil {
			return err
		}
		h.Write([]byte(path))
		h.Write(data)
		if strings.HasSuffix(path, ".c") && filepath.Dir(path) == RUNTIME_DIR {
			srcCount++
		}
		return nil
	})
	if err != nil {
		return "", "", 0, errors.Wrap(err, "walk embedded runtime")
	}
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:8], fullHash, srcCount, nil
}

// extractRuntime writes the embedded runtime files to rtDir.
func extractRuntime(rtDir string) error {
	if err := os.MkdirAll(rtDir, 0o755); err != nil {
		return errors.Wrap(err, "create runtime dir")
	}
	return fs.WalkDir(runtimeFS, RUNTIME_DIR, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(err, "walk %v", path)
		}
		relPath, _ := filepath.Rel(RUNTIME_DIR, path)
		destPath := filepath.Join(rtDir, relPath)
		if d.IsDir() {
			return os.MkdirAll(destPath, 0o755)
		}
		data, err := runtimeFS.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "read embedded %v", path)
		}
		return os.WriteFile(destPath, data, 0o644)
	})
}

// compileRuntime compiles .c files in rtDir and returns paths to .o files.
func compileRuntime(rtDir string) ([]string, error) {
	rtSrcs, err := filepath.Glob(filepath.Join(rtDir, "*.c"))
	if err != nil {
		return nil, errors.Wrap(err, "glob runtime sources")
	}
	if len(rtSrcs) == 0 {
		return nil, errors.New("no runtime .c files found under %v", rtDir)
	}

	var rtObjs []string
	for _, src := range rtSrcs {
		outObj := filepath.Join(rtDir, strings.TrimSuffix(filepath.Base(src), ".c")+OBJ_SUFFIX)
		args := append(runtimeCompileFlags(), "-I", rtDir, "-c", src, "-o", outObj)
		if out, err := exec.Command(cc(), args...).CombinedOutput(); err != nil {
			return nil, errors.Wrap(err, "compile %v\n%s", src, out)
		}
		rtObjs = append(rtObjs, outObj)
	}
	return rtObjs, nil
}

const (
	keepRuntimes   = 5
	runtimeMaxIdle = 7 * 24 * time.Hour
)

// staleRuntimes lists the hash directories under dir that can go: everything
// but the keep most recently modified, and of those only the ones idle for
// at least minAge.
func staleRuntimes(dir string, keep int, minAge time.Duration) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type hashDir struct {
		path  string
		mtime time.Time
	}

	var found []hashDir
	for _, e := range entries {
		if !e.IsDir() || !isHashDir(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, hashDir{filepath.Join(dir, e.Name()), info.ModTime()})
	}

	slices.SortFunc(found, func(a, b hashDir) int { return b.mtime.Compare(a.mtime) })

	var stale []string
	cutoff := time.Now().Add(-minAge)
	for i, d := range found {
		if i >= keep && d.mtime.Before(cutoff) {
			stale = append(stale, d.path)
		}
	}
	return stale
}

func pruneRuntimes(dir string, keep int, minAge time.Duration) {
	for _, path := range staleRuntimes(dir, keep, minAge) {
		if err := os.RemoveAll(path); err != nil {
			tlog.Printw("remove stale runtime", "path", path, "err", err)
		}
	}
}

// cachedRuntime returns the objects of a finished build in rtDir. A build is
// finished once its .hash file holds the full source hash.
func cachedRuntime(rtDir, sum string, srcCount int) ([]string, bool) {
	stored, err := os.ReadFile(filepath.Join(rtDir, ".hash"))
	if err != nil || string(stored) != sum {
		return nil, false
	}

	objs, err := filepath.Glob(filepath.Join(rtDir, "*"+OBJ_SUFFIX))
	if err != nil || len(objs) != srcCount {
		return nil, false
	}
	return objs, true
}

func buildRuntime(rtDir, sum string) ([]string, error) {
	// a half-written dir from a crashed build
	if err := os.RemoveAll(rtDir); err != nil {
		return nil, errors.Wrap(err, "clear %v", rtDir)
	}
	if err := extractRuntime(rtDir); err != nil {
		return nil, err
	}

	objs, err := compileRuntime(rtDir)
	if err != nil {
		return nil, err
	}

	err = os.WriteFile(filepath.Join(rtDir, ".hash"), []byte(sum), 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "mark runtime built")
	}
	return objs, nil
}

// prepareRuntime returns the runtime objects for the current sources and
// flags, building them under cacheDir/runtime/<hash> on first use. The whole
// lookup runs under a lock on the runtime directory.
func prepareRuntime(cacheDir string) (objs []string, err error) {
	dir := filepath.Join(cacheDir, RUNTIME_DIR)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create runtime dir")
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return nil, errors.Wrap(err, "lock runtime dir")
	}
	defer func() {
		if e := lock.Unlock(); err == nil && e != nil {
			err = errors.Wrap(e, "unlock runtime dir")
		}
	}()

	short, sum, srcCount, err := runtimeInfo()
	if err != nil {
		return nil, err
	}

	rtDir := filepath.Join(dir, short)
	if objs, ok := cachedRuntime(rtDir, sum, srcCount); ok {
		tlog.V("runtime").Printw("runtime cached", "dir", rtDir)
		return objs, nil
	}

	pruneRuntimes(dir, keepRuntimes, runtimeMaxIdle)

	tlog.Printw("building runtime", "dir", rtDir, "sources", srcCount)
	return buildRuntime(rtDir, sum)
}
