// Package client implements the CLI-side half of the control socket
// protocol. It is a direct descendant of the teacher repo's
// pkg/supervisor/ctl_client.go - dial the socket, send one request,
// read one response - but framed the way pkg/wire requires: one JSON
// value per line instead of a length-prefixed msgpack blob.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/adamnew123456/jobmon/pkg/wire"
)

// Client holds the control socket path; each call opens its own short
// lived connection, matching the one-request-per-connection protocol
// spec.md 6 describes.
type Client struct {
	SockPath string
	Timeout  time.Duration
}

func New(sockPath string) *Client {
	return &Client{SockPath: sockPath, Timeout: 5 * time.Second}
}

func (c *Client) call(req wire.Request) (*wire.Response, error) {
	conn, err := net.DialTimeout("unix", c.SockPath, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.SockPath, err)
	}
	defer conn.Close()

	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	enc := wire.NewEncoder(conn)
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var resp wire.Response
	dec := wire.NewDecoder(conn)
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &resp, nil
}

func (c *Client) Start(job string) error {
	resp, err := c.call(wire.Request{Command: wire.CmdStart, Job: job})
	if err != nil {
		return err
	}
	return asError(resp)
}

func (c *Client) Stop(job string) error {
	resp, err := c.call(wire.Request{Command: wire.CmdStop, Job: job})
	if err != nil {
		return err
	}
	return asError(resp)
}

func (c *Client) Status(job string) (string, error) {
	resp, err := c.call(wire.Request{Command: wire.CmdStatus, Job: job})
	if err != nil {
		return "", err
	}
	if err := asError(resp); err != nil {
		return "", err
	}
	phase, _ := resp.Payload.(string)
	return phase, nil
}

func (c *Client) ListJobs() ([]wire.JobStatus, error) {
	resp, err := c.call(wire.Request{Command: wire.CmdListJobs})
	if err != nil {
		return nil, err
	}
	if err := asError(resp); err != nil {
		return nil, err
	}

	raw, ok := resp.Payload.([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]wire.JobStatus, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		status, _ := m["status"].(string)
		out = append(out, wire.JobStatus{Name: name, Status: status})
	}
	return out, nil
}

// Wait blocks on the daemon's reply with no client-side timeout beyond
// what the caller configured on c.Timeout; set Timeout to 0 for an
// unbounded wait.
func (c *Client) Wait(job string) (string, error) {
	resp, err := c.call(wire.Request{Command: wire.CmdWait, Job: job})
	if err != nil {
		return "", err
	}
	if err := asError(resp); err != nil {
		return "", err
	}
	phase, _ := resp.Payload.(string)
	return phase, nil
}

func (c *Client) Terminate() error {
	resp, err := c.call(wire.Request{Command: wire.CmdTerminate})
	if err != nil {
		return err
	}
	return asError(resp)
}

// ErrResponse wraps a daemon-reported error code (spec.md 6) in a form
// callers can match against.
type ErrResponse struct {
	Code string
}

func (e *ErrResponse) Error() string { return e.Code }

func asError(resp *wire.Response) error {
	if resp.OK {
		return nil
	}
	return &ErrResponse{Code: resp.Error}
}
