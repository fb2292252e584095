package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/1broseidon/gridstart/internal/daemon"
)

// CommandType names a request. One request and one response travel per
// connection, each as a single JSON line.
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandGetGrid   CommandType = "GET_GRID"
	CommandCheckSync CommandType = "CHECK_SYNC"
)

const (
	statusOK    = "OK"
	statusError = "ERROR"
)

// Request is what a client writes.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is what the server writes back. Data is set on success, Error
// otherwise.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the GET_STATUS payload.
type StatusData struct {
	daemon.Status
	PID           int   `json:"pid"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Uptime returns the instance uptime as a duration.
func (s StatusData) Uptime() time.Duration {
	return time.Duration(s.UptimeSeconds) * time.Second
}

// NewOKResponse wraps data in a successful response.
func NewOKResponse(data any) (*Response, error) {
	resp := &Response{Status: statusOK}
	if data == nil {
		return resp, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", data, err)
	}
	resp.Data = raw
	return resp, nil
}

// NewErrorResponse builds a failed response.
func NewErrorResponse(msg string) *Response {
	return &Response{Status: statusError, Error: msg}
}

// Err returns the remote error carried by r, if any.
func (r *Response) Err() error {
	if r.Status == statusError {
		return fmt.Errorf("gridstart: %s", r.Error)
	}
	return nil
}

// Decode unmarshals the response payload into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("empty response payload")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// ParseRequest decodes one request line.
func ParseRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

// Marshal encodes r without the trailing newline.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
