package ipc

import (
	"encoding/json"
	"fmt"
)

// Commands understood by the daemon.
const (
	CmdPing    = "ping"
	CmdList    = "list"
	CmdSearch  = "search"
	CmdClear   = "clear"
	CmdSize    = "size"
	CmdRestore = "restore"
	CmdToggle  = "toggle"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a command sent from the CLI to the daemon.
type Request struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`
}

// Response represents a reply from the daemon to the CLI.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewRequest builds a request. args are alternating key/value pairs.
func NewRequest(command string, args ...any) *Request {
	req := &Request{Command: command}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]any)
		}
		req.Args[key] = args[i+1]
	}
	return req
}

// StringArg returns the named string argument.
func (r *Request) StringArg(name string) (string, bool) {
	v, ok := r.Args[name].(string)
	return v, ok
}

// IntArg returns the named integer argument. JSON numbers arrive as float64.
func (r *Request) IntArg(name string) (int, bool) {
	switch v := r.Args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// OK builds a success response carrying data.
func OK(message string, data any) *Response {
	resp := &Response{Status: StatusOK, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Errorf("failed to encode response: %v", err)
		}
		resp.Data = raw
	}
	return resp
}

// Errorf builds an error response.
func Errorf(format string, args ...any) *Response {
	return &Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Err converts an error response into a Go error.
func (r *Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	return fmt.Errorf("daemon: %s", r.Message)
}

// Decode unmarshals the response data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// SizeData is the payload of a size response.
type SizeData struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
}

// ToggleData is the payload of a toggle response.
type ToggleData struct {
	Visible bool `json:"visible"`
}
