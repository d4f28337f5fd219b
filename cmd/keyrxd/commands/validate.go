package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/keyrx/keyrx/pkg/artifact"
)

// RunValidate implements `keyrxd validate PATH`: loads the artifact
// (which already enforces header magic, version, and the SHA-256
// integrity hash) and reports any structural-consistency Findings on
// top of that (spec.md §4.1; SPEC_FULL.md's supplemented validate
// surface, following cmd/mash-pics/commands/validate.go's per-file
// report shape).
func RunValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: usage: keyrxd validate PATH")
		return exitUsage
	}
	path := fs.Arg(0)

	root, err := artifact.Load(path)
	if err != nil {
		fmt.Fprintf(stdout, "%s: FAILED\n  %v\n", path, err)
		return exitConfig
	}

	findings := root.Validate()
	if len(findings) == 0 {
		fmt.Fprintf(stdout, "%s: OK (%d devices, %d layers)\n", path, len(root.Config.Devices), len(root.Config.Layers))
		return exitSuccess
	}

	fmt.Fprintf(stdout, "%s: FAILED (%d findings)\n", path, len(findings))
	for _, f := range findings {
		device := "fallback"
		if f.Device >= 0 {
			device = fmt.Sprintf("device %d", f.Device)
		}
		fmt.Fprintf(stdout, "  [%s] %s\n", device, f.Message)
	}
	return exitConfig
}
