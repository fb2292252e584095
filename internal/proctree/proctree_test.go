package proctree

import (
	"os"
	"reflect"
	"testing"
)

func TestDescendants(t *testing.T) {
	parents := map[int]int{
		1:  0,
		10: 1,
		11: 10,
		12: 10,
		13: 11,
		20: 1,
		30: 99, // parent not in table
	}

	tests := []struct {
		name string
		root int
		want []int
	}{
		{"subtree", 10, []int{10, 11, 12, 13}},
		{"leaf", 13, []int{13}},
		{"whole tree", 1, []int{1, 10, 11, 12, 13, 20}},
		{"missing root", 42, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Descendants(parents, tt.root)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDescendantsSurvivesCycles(t *testing.T) {
	parents := map[int]int{5: 6, 6: 5}
	got := Descendants(parents, 5)
	if !reflect.DeepEqual(got, []int{5, 6}) {
		t.Fatalf("expected [5 6], got %v", got)
	}
}

func TestTrackerSeesCurrentProcess(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("procfs not available")
	}
	tr, err := NewTracker()
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}

	pid := os.Getpid()
	if !tr.Alive(pid) {
		t.Fatalf("expected own pid %d to be alive", pid)
	}
	tree, err := tr.Tree(pid)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(tree) == 0 || tree[0] != pid {
		t.Fatalf("expected tree rooted at %d, got %v", pid, tree)
	}
}
