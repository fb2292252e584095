// Package proctree follows a launched process and its descendants through /proc.
package proctree

import (
	"fmt"
	"sort"

	"github.com/prometheus/procfs"
)

// Tracker reads the process table from a procfs mount.
type Tracker struct {
	fs procfs.FS
}

// NewTracker opens the default /proc mount.
func NewTracker() (*Tracker, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	return &Tracker{fs: fs}, nil
}

// NewTrackerAt opens a procfs mount at mountPoint.
func NewTrackerAt(mountPoint string) (*Tracker, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", mountPoint, err)
	}
	return &Tracker{fs: fs}, nil
}

// Tree returns root followed by every live descendant, sorted after root.
// Zombies are left out. If root itself is gone the result is empty.
func (t *Tracker) Tree(root int) ([]int, error) {
	procs, err := t.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	parents := make(map[int]int, len(procs))
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// Exited between listing and reading.
			continue
		}
		if stat.State == "Z" || stat.State == "X" {
			continue
		}
		parents[p.PID] = stat.PPID
	}
	return Descendants(parents, root), nil
}

// Alive reports whether pid exists and is not a zombie.
func (t *Tracker) Alive(pid int) bool {
	p, err := t.fs.Proc(pid)
	if err != nil {
		return false
	}
	stat, err := p.Stat()
	if err != nil {
		return false
	}
	return stat.State != "Z" && stat.State != "X"
}

// Descendants walks a pid -> ppid table from root. The result starts with
// root and is empty when root is not in the table.
func Descendants(parents map[int]int, root int) []int {
	if _, ok := parents[root]; !ok {
		return nil
	}

	children := make(map[int][]int, len(parents))
	for pid, ppid := range parents {
		if pid != ppid {
			children[ppid] = append(children[ppid], pid)
		}
	}

	out := []int{root}
	seen := map[int]bool{root: true}
	stack := []int{root}
	for len(stack) > 0 {
		pid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[pid] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			stack = append(stack, child)
		}
	}
	sort.Ints(out[1:])
	return out
}
