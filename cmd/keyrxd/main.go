// keyrxd is the orchestrator daemon: it loads a compiled artifact,
// installs the platform hook, and serializes every device's remapping
// decisions onto one dispatch worker (spec.md §4.4/§5).
package main

import (
	"fmt"
	"os"

	"github.com/keyrx/keyrx/cmd/keyrxd/commands"
)

const (
	exitSuccess   = 0
	exitUsage     = 1
	exitConfig    = 2
	exitPrivilege = 3
	exitRuntime   = 4
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "run":
		exitCode = commands.RunDaemon(args, os.Stdout, os.Stderr)
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "list-devices":
		exitCode = commands.RunListDevices(args, os.Stdout, os.Stderr)
	case "inspect":
		exitCode = commands.RunInspect(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitUsage
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`keyrxd - OS-level keyboard remapping daemon

Usage:
  keyrxd <command> [options]

Commands:
  run           Load an artifact and start remapping
                  --config PATH  daemon config file (required)
                  --debug        verbose console logging
                  --test-mode    run against the in-process sim adapter
  validate      Load an artifact and report integrity/structural issues
                  keyrxd validate PATH
  list-devices  Enumerate device identities via the platform adapter
  inspect       Interactive REPL over a loaded artifact's structure

Exit codes: 0 success, 2 configuration error, 3 privilege error, 4 runtime error.`)
}
