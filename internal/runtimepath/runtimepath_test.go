package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/gridstart-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath(4242)
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/gridstart-4242.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}
	if pid, ok := PIDFromSocket(socket); !ok || pid != 4242 {
		t.Fatalf("PIDFromSocket(%q) = %d, %v", socket, pid, ok)
	}
}

func TestPIDFromSocketRejectsForeignNames(t *testing.T) {
	for _, name := range []string{"gridstart-.sock", "gridstart-abc.sock", "gridstart--1.sock"} {
		if _, ok := PIDFromSocket(name); ok {
			t.Fatalf("PIDFromSocket(%q) accepted", name)
		}
	}
}

func TestFindSocketsNewestFirst(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	now := time.Now()
	for i, pid := range []int{10, 30, 20} {
		path := filepath.Join(td, fmt.Sprintf("gridstart-%d.sock", pid))
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		mod := now.Add(time.Duration(i) * time.Second)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(td, "other.sock"), nil, 0600); err != nil {
		t.Fatal(err)
	}

	got, err := FindSockets()
	if err != nil {
		t.Fatalf("FindSockets() error: %v", err)
	}
	want := []string{
		filepath.Join(td, "gridstart-20.sock"),
		filepath.Join(td, "gridstart-30.sock"),
		filepath.Join(td, "gridstart-10.sock"),
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("FindSockets() = %v, want %v", got, want)
	}
}
