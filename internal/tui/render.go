// Package tui renders grid snapshots for the terminal.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minCellWidth = 14
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	occupiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	markStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

// TerminalWidth returns the width of f when it is a terminal, else 80.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// RenderSnapshot draws one box per cell, row by row, under a summary line.
func RenderSnapshot(snap grid.Snapshot, width int) string {
	if snap.Rows < 1 || snap.Cols < 1 {
		return mutedStyle.Render("empty grid")
	}
	if width <= 0 {
		width = defaultWidth
	}

	inner := width/snap.Cols - 2
	if inner < minCellWidth {
		inner = minCellWidth
	}

	rows := make([]string, 0, snap.Rows)
	for r := 0; r < snap.Rows; r++ {
		boxes := make([]string, 0, snap.Cols)
		for c := 0; c < snap.Cols; c++ {
			i := r*snap.Cols + c
			if i >= len(snap.Cells) {
				break
			}
			boxes = append(boxes, renderCell(snap, snap.Cells[i], inner))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(summarize(snap)),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderCell(snap grid.Snapshot, cs grid.CellState, inner int) string {
	lines := []string{mutedStyle.Render(fmt.Sprintf("#%d  r%d c%d", cs.Index, cs.Row, cs.Col))}

	if cs.Occupant == 0 {
		lines = append(lines, mutedStyle.Render("free"))
	} else {
		lines = append(lines, occupiedStyle.Render(fmt.Sprintf("0x%08x", uint32(cs.Occupant))))
		if cs.FilledAt != nil && !snap.TakenAt.IsZero() {
			age := snap.TakenAt.Sub(*cs.FilledAt).Truncate(time.Second)
			lines = append(lines, mutedStyle.Render("age "+age.String()))
		}
	}

	var marks []string
	if cs.Reserved {
		marks = append(marks, "reserved")
	}
	if cs.Occupant != 0 && cs.Occupant == snap.Launcher {
		marks = append(marks, "launcher")
	}
	if len(marks) > 0 {
		lines = append(lines, markStyle.Render(strings.Join(marks, " ")))
	}
	if cs.Mismatch() {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("covered by 0x%08x", uint32(cs.PixelOwner))))
	}

	border := lipgloss.Color("62")
	if cs.Mismatch() {
		border = lipgloss.Color("196")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(inner).
		Height(4).
		Render(strings.Join(lines, "\n"))
}

func summarize(snap grid.Snapshot) string {
	cells := len(snap.Cells)
	occupied := cells - len(snap.Free)
	out := fmt.Sprintf("%dx%d grid • %s • %d/%d occupied", snap.Rows, snap.Cols, snap.Policy, occupied, cells)
	if cells > 0 {
		b := snap.Cells[0].Bounds
		out += fmt.Sprintf(" • %d×%d px cells", b.Width, b.Height)
	}
	if snap.HasBeenFull {
		out += " • has been full"
	}
	return out
}
