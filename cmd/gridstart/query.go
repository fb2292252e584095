package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/gridstart/internal/ipc"
	"github.com/1broseidon/gridstart/internal/tui"
)

func dialInstance(pid int) (*ipc.Client, bool) {
	client, err := ipc.NewClient(pid)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, false
	}
	return client, true
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	pid := fs.Int("pid", 0, "PID of the gridstart instance (default: newest)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridstart status [--pid N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a running instance via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client, ok := dialInstance(*pid)
	if !ok {
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("pid:            %d\n", status.PID)
	fmt.Printf("root_pid:       %d\n", status.RootPID)
	fmt.Printf("tracked_pids:   %v\n", status.TrackedPIDs)
	fmt.Printf("launcher:       0x%08x\n", uint32(status.Launcher))
	fmt.Printf("occupied:       %d/%d\n", status.Occupied, status.Cells)
	fmt.Printf("placed:         %d\n", status.Placed)
	fmt.Printf("follow:         %v (forever: %v)\n", status.Follow, status.Forever)
	fmt.Printf("uptime:         %s\n", status.Uptime())
	return 0
}

func runGrid(args []string) int {
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	pid := fs.Int("pid", 0, "PID of the gridstart instance (default: newest)")
	asJSON := fs.Bool("json", false, "Print the snapshot as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client, ok := dialInstance(*pid)
	if !ok {
		return 1
	}
	snap, err := client.GetGrid()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	fmt.Println(tui.RenderSnapshot(*snap, tui.TerminalWidth(os.Stdout)))
	return 0
}

func runSync(args []string) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	pid := fs.Int("pid", 0, "PID of the gridstart instance (default: newest)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client, ok := dialInstance(*pid)
	if !ok {
		return 1
	}
	report, err := client.CheckSync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("missing_index:    %d\n", report.MissingIndex)
	fmt.Printf("mismatched:       %d\n", report.Mismatched)
	fmt.Printf("dangling:         %d\n", report.Dangling)
	fmt.Printf("pixel_mismatches: %d\n", report.PixelMismatches)
	fmt.Printf("corrections:      %d\n", report.Corrections())
	return 0
}
