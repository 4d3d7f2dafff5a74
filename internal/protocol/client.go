// Package protocol drives the MCP handshake and tool calls against a server
// process over stdio. The driver always speaks Content-Length framing on the
// way in; whatever the server writes back is captured raw and handed to the
// extractor, because real servers answer with anything from clean framed
// responses to bare JSON lines mixed with log noise.
package protocol

import (
	"context"
	"fmt"
	"time"

	"mcpcheck/internal/session"
	"mcpcheck/internal/wire"
	"mcpcheck/pkg/logging"
)

const (
	// ProtocolVersion is the MCP revision advertised during initialize.
	ProtocolVersion = "2024-11-05"

	defaultClientName    = "mcpcheck"
	defaultClientVersion = "1.0.0"

	// defaultInitPause gives the server a beat to finish its handshake
	// before tool calls arrive. Servers that queue requests do not need
	// it, but servers that drop pre-handshake input do.
	defaultInitPause = 300 * time.Millisecond

	// defaultDrainTimeout bounds how long a session may linger after its
	// stdin closes.
	defaultDrainTimeout = 10 * time.Second
)

// Transcript is everything a server emitted during one call sequence.
type Transcript struct {
	Stdout string
	Stderr string
}

// Client runs one initialize-then-call sequence per session. The handshake
// always carries request id 1; tool calls are numbered from 2 in the order
// given.
type Client struct {
	Waiter          session.WaitStrategy
	ClientName      string
	ClientVersion   string
	ProtocolVersion string
	InitPause       time.Duration
	DrainTimeout    time.Duration
}

// NewClient returns a client with production pacing.
func NewClient(waiter session.WaitStrategy) *Client {
	return &Client{
		Waiter:          waiter,
		ClientName:      defaultClientName,
		ClientVersion:   defaultClientVersion,
		ProtocolVersion: ProtocolVersion,
		InitPause:       defaultInitPause,
		DrainTimeout:    defaultDrainTimeout,
	}
}

// Call spawns the server described by spec, performs the handshake, sends the
// given requests in order, waits settle for the server to respond, and
// returns the full transcript. The session is always torn down before
// returning. Requests are sent fire-and-forget; pairing responses to
// requests happens later, over the transcript.
func (c *Client) Call(ctx context.Context, spec session.Spec, requests []wire.Request, settle time.Duration) (Transcript, error) {
	s, err := session.Open(ctx, spec)
	if err != nil {
		return Transcript{}, err
	}
	defer s.Close()

	if err := c.send(s, c.initializeRequest()); err != nil {
		return c.transcript(s), err
	}
	if err := c.Waiter.Wait(ctx, c.InitPause); err != nil {
		return c.transcript(s), err
	}

	for i, req := range requests {
		req.JSONRPC = wire.JSONRPCVersion
		req.ID = int64(i + 2)
		if err := c.send(s, req); err != nil {
			return c.transcript(s), err
		}
	}

	if err := c.Waiter.Wait(ctx, settle); err != nil {
		return c.transcript(s), err
	}

	stdout, stderr := s.Drain(c.DrainTimeout)
	return Transcript{Stdout: stdout, Stderr: stderr}, nil
}

func (c *Client) send(s *session.Session, req wire.Request) error {
	frame, err := wire.Encode(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", req.Method, err)
	}
	logging.Debug("Protocol", "Sending %s (id %d)", req.Method, req.ID)
	return s.Send(frame)
}

func (c *Client) initializeRequest() wire.Request {
	req := wire.MethodCall("initialize", map[string]any{
		"protocolVersion": c.ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    c.ClientName,
			"version": c.ClientVersion,
		},
	})
	req.ID = 1
	return req
}

// transcript snapshots output on the error path, so callers can surface what
// the server said before things went wrong.
func (c *Client) transcript(s *session.Session) Transcript {
	stdout, stderr := s.Output()
	return Transcript{Stdout: stdout, Stderr: stderr}
}

// ServerCaller binds a client to one server spec, yielding the one-method
// surface the test runner consumes.
type ServerCaller struct {
	Client *Client
	Spec   session.Spec
}

func (sc *ServerCaller) Call(ctx context.Context, requests []wire.Request, settle time.Duration) (Transcript, error) {
	return sc.Client.Call(ctx, sc.Spec, requests, settle)
}
