// Package controller implements the control channel to the device agent.
// Test steps are carried as newline-delimited JSON frames over a TCP
// connection; the engine never looks inside them.
package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"ofprobe/pkg/logging"
)

// request is one action frame sent to the device agent.
type request struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// response is the agent's reply frame.
type response struct {
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client is a control-channel client. It dials lazily on the first Execute
// and reuses the connection for the rest of the run. Safe for use by the
// engine's strictly sequential runner; the mutex only guards Close racing a
// call in flight.
type Client struct {
	addr        string
	dialTimeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// New creates a client for the device agent at addr (host:port).
func New(addr string, dialTimeout time.Duration) *Client {
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return &Client{addr: addr, dialTimeout: dialTimeout}
}

// Execute sends one action to the device agent and returns its output. An
// agent-side failure is returned as an error carrying the agent's message.
func (c *Client) Execute(ctx context.Context, action string, params map[string]interface{}) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return "", err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set deadline: %w", err)
		}
	} else {
		if err := c.conn.SetDeadline(time.Time{}); err != nil {
			return "", fmt.Errorf("failed to clear deadline: %w", err)
		}
	}

	frame, err := json.Marshal(request{Action: action, Params: params})
	if err != nil {
		return "", fmt.Errorf("failed to encode action %q: %w", action, err)
	}
	frame = append(frame, '\n')

	if _, err := c.conn.Write(frame); err != nil {
		return "", fmt.Errorf("control channel write failed: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return "", fmt.Errorf("control channel read failed: %w", err)
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return "", fmt.Errorf("malformed control channel frame: %w", err)
	}
	if !resp.OK {
		return resp.Output, fmt.Errorf("action %q failed: %s", action, resp.Error)
	}

	logging.Debug("controller", "action %q ok (%d bytes output)", action, len(resp.Output))
	return resp.Output, nil
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to device agent at %s: %w", c.addr, err)
	}
	logging.Info("controller", "connected to device agent at %s", c.addr)
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close tears down the connection. Open per-test resources on the agent
// side rely on their own OS-level teardown.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}
