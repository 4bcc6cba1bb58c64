package main

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables injected via linker flags (ldflags).
//
// Development builds keep these defaults. Release builds set them with:
//
//	go build -ldflags "-X main.Version=$(git describe --tags) -X main.Commit=... -X main.BuildDate=..." -o sysyc
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func versionString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sysyc %s (%s/%s, %s)\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	if Commit != "unknown" {
		fmt.Fprintf(&sb, "  commit: %s\n", Commit)
	}
	if BuildDate != "unknown" {
		fmt.Fprintf(&sb, "  built:  %s\n", BuildDate)
	}
	return sb.String()
}

func printVersion() {
	fmt.Print(versionString())
}
