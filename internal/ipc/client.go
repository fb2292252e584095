package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/runtimepath"
)

// ErrNotRunning is returned when no gridstart instance answers.
var ErrNotRunning = errors.New("no running gridstart instance")

// Client handles IPC communication with a running instance
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the instance running as pid. With pid 0
// it picks the newest instance that accepts a connection.
func NewClient(pid int) (*Client, error) {
	if pid > 0 {
		socketPath, err := runtimepath.SocketPath(pid)
		if err != nil {
			return nil, err
		}
		return NewClientAt(socketPath), nil
	}

	sockets, err := runtimepath.FindSockets()
	if err != nil {
		return nil, err
	}
	for _, socketPath := range sockets {
		conn, err := net.DialTimeout("unix", socketPath, time.Second)
		if err != nil {
			// Left behind by an instance that did not shut down cleanly.
			continue
		}
		conn.Close()
		return NewClientAt(socketPath), nil
	}
	return nil, ErrNotRunning
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the socket the client talks to.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetStatus retrieves instance status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := resp.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetGrid retrieves a grid snapshot
func (c *Client) GetGrid() (*grid.Snapshot, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetGrid})
	if err != nil {
		return nil, err
	}

	var snap grid.Snapshot
	if err := resp.Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// CheckSync asks the instance to run a repair pass and returns its report
func (c *Client) CheckSync() (*grid.SyncReport, error) {
	resp, err := c.sendRequest(&Request{Command: CommandCheckSync})
	if err != nil {
		return nil, err
	}

	var report grid.SyncReport
	if err := resp.Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}
