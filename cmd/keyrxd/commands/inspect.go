package commands

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/keycode"
)

// RunInspect implements `keyrxd inspect PATH`: a small REPL over a
// loaded artifact's layers and devices, following the command-table
// shape of the teacher's cmd/mash-device/interactive.go (help/inspect/
// quit verbs) but driven by github.com/chzyer/readline instead of a
// bare bufio.Scanner, for history and line editing.
func RunInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: usage: keyrxd inspect PATH")
		return exitUsage
	}

	root, err := artifact.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "keyrx> ",
		Stdout:      stdout,
		Stderr:      stderr,
		HistoryFile: "",
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitRuntime
	}
	defer rl.Close()

	insp := &inspector{root: root, out: stdout}
	insp.printHelp()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return exitSuccess
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitRuntime
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], fields[1:]

		switch cmd {
		case "help", "?":
			insp.printHelp()
		case "layers":
			insp.printLayers()
		case "layer":
			insp.printLayer(rest)
		case "devices":
			insp.printDevices()
		case "quit", "exit", "q":
			return exitSuccess
		default:
			fmt.Fprintf(stdout, "unknown command: %s (type 'help')\n", cmd)
		}
	}
}

type inspector struct {
	root *artifact.Root
	out  io.Writer
}

func (i *inspector) printHelp() {
	fmt.Fprint(i.out, `
Commands:
  layers        list every layer by index and id
  layer N       show every mapped key and its action kind for layer index N
  devices       list configured device patterns and their base layer
  help          show this help
  quit          exit
`)
}

func (i *inspector) printLayers() {
	for idx, l := range i.root.Config.Layers {
		fmt.Fprintf(i.out, "%3d  %-16s  %d mapped keys\n", idx, l.ID, len(l.Mapping))
	}
}

func (i *inspector) printLayer(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(i.out, "usage: layer N")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= len(i.root.Config.Layers) {
		fmt.Fprintf(i.out, "invalid layer index %q\n", args[0])
		return
	}
	l := i.root.Config.Layers[n]
	fmt.Fprintf(i.out, "layer %d (%s):\n", n, l.ID)
	for code, act := range l.Mapping {
		fmt.Fprintf(i.out, "  %-10s -> %s\n", keycode.Code(code).String(), act.Kind.String())
	}
}

func (i *inspector) printDevices() {
	for idx, dc := range i.root.Config.Devices {
		fmt.Fprintf(i.out, "%3d  pattern=%s  baseLayer=%d  conditionals=%d\n",
			idx, describePattern(dc.Pattern), dc.BaseLayer, len(dc.Conditionals))
	}
	fmt.Fprintf(i.out, "  *  pattern=%s  baseLayer=%d  conditionals=%d\n",
		describePattern(i.root.Config.Fallback.Pattern), i.root.Config.Fallback.BaseLayer, len(i.root.Config.Fallback.Conditionals))
}

func describePattern(p artifact.DevicePattern) string {
	switch p.Kind {
	case artifact.PatternWildcard:
		return "*"
	case artifact.PatternSerial:
		return fmt.Sprintf("serial:%s", p.Serial)
	case artifact.PatternVendorProductSerial:
		return fmt.Sprintf("%04x:%04x:%s", p.VendorID, p.ProductID, p.Serial)
	default:
		return "unknown"
	}
}
