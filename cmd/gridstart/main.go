package main

import (
	"fmt"
	"io"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runLaunch(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "grid":
		os.Exit(runGrid(os.Args[2:]))
	case "sync":
		os.Exit(runSync(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "--version":
		fmt.Println("gridstart", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		// Anything else is the program to launch, flags included.
		os.Exit(runLaunch(os.Args[1:]))
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gridstart [run] [options] <program|url> [args...]")
	fmt.Fprintln(w, "       gridstart <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Launch a program and tile its windows into a grid.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Launch a program (default)")
	fmt.Fprintln(w, "  status              Show a running instance")
	fmt.Fprintln(w, "  grid                Show the grid of a running instance")
	fmt.Fprintln(w, "  sync                Run a repair pass on a running instance")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'gridstart run --help' for launch options.")
}
