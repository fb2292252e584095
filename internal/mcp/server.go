package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/ipc"
)

const (
	ServerName    = "gridstart"
	ServerVersion = "0.1.0"
)

// GridClient is the IPC surface the tools use. *ipc.Client satisfies it.
type GridClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetGrid() (*grid.Snapshot, error)
	CheckSync() (*grid.SyncReport, error)
}

// Server is the MCP server exposing a running instance's grid.
type Server struct {
	mcpServer  *mcpsdk.Server
	defaultPID int

	// dial is swapped out in tests.
	dial func(pid int) (GridClient, error)
}

// NewServer creates a new MCP server. pid selects the default instance;
// zero means the newest running one.
func NewServer(pid int) *Server {
	s := &Server{
		defaultPID: pid,
		dial: func(pid int) (GridClient, error) {
			c, err := ipc.NewClient(pid)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "grid_status",
		Description: "Report a running gridstart instance: the launched process tree, the launcher window and how many cells are occupied.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "grid_snapshot",
		Description: "Return every grid cell with its occupant window, its age and the window actually covering the cell center, plus a text diagram of the grid.",
	}, s.handleSnapshot)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "grid_check_sync",
		Description: "Run a consistency repair pass on the grid's cell table and window index and report what was corrected.",
	}, s.handleCheckSync)
}

func (s *Server) client(pid int) (GridClient, error) {
	if pid <= 0 {
		pid = s.defaultPID
	}
	return s.dial(pid)
}
