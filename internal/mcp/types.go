package mcp

// GridInput selects the gridstart instance a tool talks to.
type GridInput struct {
	PID int `json:"pid,omitempty" jsonschema:"PID of the gridstart instance (default: the server's instance, else the newest running one)"`
}

// StatusOutput is the output for the grid_status tool.
type StatusOutput struct {
	PID           int    `json:"pid"`
	RootPID       int    `json:"root_pid"`
	TrackedPIDs   []int  `json:"tracked_pids"`
	Launcher      uint32 `json:"launcher,omitempty"`
	Placed        int    `json:"placed"`
	Occupied      int    `json:"occupied"`
	Cells         int    `json:"cells"`
	Follow        bool   `json:"follow"`
	FollowForever bool   `json:"follow_forever"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// CellInfo describes a single grid cell.
type CellInfo struct {
	Index      int    `json:"index"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Occupant   uint32 `json:"occupant,omitempty"`
	Reserved   bool   `json:"reserved,omitempty"`
	AgeSeconds int64  `json:"age_seconds,omitempty"`
	CoveredBy  uint32 `json:"covered_by,omitempty"`
}

// SnapshotOutput is the output for the grid_snapshot tool.
type SnapshotOutput struct {
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	Policy      string     `json:"policy"`
	Launcher    uint32     `json:"launcher,omitempty"`
	HasBeenFull bool       `json:"has_been_full"`
	Free        []int      `json:"free"`
	Cells       []CellInfo `json:"cells"`
	Diagram     string     `json:"diagram"`
}

// SyncOutput is the output for the grid_check_sync tool.
type SyncOutput struct {
	MissingIndex    int `json:"missing_index"`
	Mismatched      int `json:"mismatched"`
	Dangling        int `json:"dangling"`
	PixelMismatches int `json:"pixel_mismatches"`
	Corrections     int `json:"corrections"`
}
