package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/keyrx/keyrx/pkg/config"
)

// RunListDevices implements `keyrxd list-devices`: enumerates
// identities via the platform adapter without installing a hook
// (spec.md §2 CLI surface).
func RunListDevices(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list-devices", flag.ContinueOnError)
	fs.SetOutput(stderr)
	testMode := fs.Bool("test-mode", false, "enumerate against the in-process sim adapter")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	env := config.Env{TestMode: *testMode}
	adapter, closer, err := selectAdapter(env)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitPrivilege
	}
	if closer != nil {
		defer closer.Close()
	}

	devices, err := adapter.EnumerateDevices()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitRuntime
	}

	if len(devices) == 0 {
		fmt.Fprintln(stdout, "no devices found")
		return exitSuccess
	}
	for _, d := range devices {
		fmt.Fprintf(stdout, "%-24s vendor=%04x product=%04x serial=%q\n", d.Path, d.VendorID, d.ProductID, d.Serial)
	}
	return exitSuccess
}
