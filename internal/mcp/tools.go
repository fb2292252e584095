package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/tui"
)

const diagramWidth = 100

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args GridInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	c, err := s.client(args.PID)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	st, err := c.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		PID:           st.PID,
		RootPID:       st.RootPID,
		TrackedPIDs:   st.TrackedPIDs,
		Launcher:      uint32(st.Launcher),
		Placed:        st.Placed,
		Occupied:      st.Occupied,
		Cells:         st.Cells,
		Follow:        st.Follow,
		FollowForever: st.Forever,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleSnapshot(_ context.Context, _ *mcpsdk.CallToolRequest, args GridInput) (*mcpsdk.CallToolResult, SnapshotOutput, error) {
	c, err := s.client(args.PID)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	snap, err := c.GetGrid()
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	return nil, snapshotOutput(*snap), nil
}

func snapshotOutput(snap grid.Snapshot) SnapshotOutput {
	out := SnapshotOutput{
		Rows:        snap.Rows,
		Cols:        snap.Cols,
		Policy:      snap.Policy,
		Launcher:    uint32(snap.Launcher),
		HasBeenFull: snap.HasBeenFull,
		Free:        snap.Free,
		Cells:       make([]CellInfo, 0, len(snap.Cells)),
		Diagram:     tui.RenderSnapshot(snap, diagramWidth),
	}
	if out.Free == nil {
		out.Free = []int{}
	}
	for _, cs := range snap.Cells {
		info := CellInfo{
			Index:    cs.Index,
			Row:      cs.Row,
			Col:      cs.Col,
			Occupant: uint32(cs.Occupant),
			Reserved: cs.Reserved,
		}
		if cs.FilledAt != nil && !snap.TakenAt.IsZero() {
			info.AgeSeconds = int64(snap.TakenAt.Sub(*cs.FilledAt).Seconds())
		}
		if cs.Mismatch() {
			info.CoveredBy = uint32(cs.PixelOwner)
		}
		out.Cells = append(out.Cells, info)
	}
	return out
}

func (s *Server) handleCheckSync(_ context.Context, _ *mcpsdk.CallToolRequest, args GridInput) (*mcpsdk.CallToolResult, SyncOutput, error) {
	c, err := s.client(args.PID)
	if err != nil {
		return nil, SyncOutput{}, err
	}
	report, err := c.CheckSync()
	if err != nil {
		return nil, SyncOutput{}, err
	}
	return nil, SyncOutput{
		MissingIndex:    report.MissingIndex,
		Mismatched:      report.Mismatched,
		Dangling:        report.Dangling,
		PixelMismatches: report.PixelMismatches,
		Corrections:     report.Corrections(),
	}, nil
}
