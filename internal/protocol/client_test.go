package protocol

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpcheck/internal/session"
	"mcpcheck/internal/wire"
)

// catSpec echoes every frame the driver writes straight back to stdout,
// letting the tests inspect the exact bytes that go over the wire.
func catSpec() session.Spec {
	return session.Spec{Command: "cat"}
}

func fastClient() *Client {
	c := NewClient(session.NoDelay{})
	c.DrainTimeout = 5 * time.Second
	return c
}

func decodeRequests(t *testing.T, stdout string) []wire.Request {
	t.Helper()
	msgs, errs := wire.DecodeAll([]byte(stdout))
	require.Empty(t, errs)
	reqs := make([]wire.Request, 0, len(msgs))
	for _, msg := range msgs {
		var req wire.Request
		require.NoError(t, json.Unmarshal(msg, &req))
		reqs = append(reqs, req)
	}
	return reqs
}

func TestCallSendsHandshakeFirst(t *testing.T) {
	transcript, err := fastClient().Call(context.Background(), catSpec(), nil, 0)
	require.NoError(t, err)

	reqs := decodeRequests(t, transcript.Stdout)
	require.Len(t, reqs, 1)
	assert.Equal(t, "initialize", reqs[0].Method)
	assert.Equal(t, int64(1), reqs[0].ID)
	assert.Equal(t, wire.JSONRPCVersion, reqs[0].JSONRPC)
	assert.Equal(t, ProtocolVersion, reqs[0].Params["protocolVersion"])

	info, ok := reqs[0].Params["clientInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, defaultClientName, info["name"])
}

func TestCallNumbersToolCallsFromTwo(t *testing.T) {
	requests := []wire.Request{
		wire.ToolCall("list_users", map[string]any{"limit": 3}),
		wire.ToolCall("get_user", map[string]any{"user_id": 255838675}),
	}

	transcript, err := fastClient().Call(context.Background(), catSpec(), requests, 0)
	require.NoError(t, err)

	reqs := decodeRequests(t, transcript.Stdout)
	require.Len(t, reqs, 3)
	assert.Equal(t, int64(2), reqs[1].ID)
	assert.Equal(t, int64(3), reqs[2].ID)
	assert.Equal(t, "tools/call", reqs[1].Method)
	assert.Equal(t, "list_users", reqs[1].Params["name"])
	assert.Equal(t, "get_user", reqs[2].Params["name"])
}

func TestCallDoesNotMutateCallerRequests(t *testing.T) {
	requests := []wire.Request{wire.ToolCall("list_users", nil)}

	_, err := fastClient().Call(context.Background(), catSpec(), requests, 0)
	require.NoError(t, err)

	assert.Zero(t, requests[0].ID, "id assignment must happen on a copy")
}

func TestCallFailsForMissingServer(t *testing.T) {
	spec := session.Spec{Command: "/nonexistent/mcp-server"}
	_, err := fastClient().Call(context.Background(), spec, nil, 0)
	require.Error(t, err)
}

func TestCallHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(session.FixedDelay{})
	c.DrainTimeout = 5 * time.Second
	_, err := c.Call(ctx, catSpec(), nil, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServerCallerBindsSpec(t *testing.T) {
	sc := &ServerCaller{Client: fastClient(), Spec: catSpec()}

	transcript, err := sc.Call(context.Background(), []wire.Request{wire.ToolCall("who_am_i", nil)}, 0)
	require.NoError(t, err)

	reqs := decodeRequests(t, transcript.Stdout)
	require.Len(t, reqs, 2)
	assert.Equal(t, "who_am_i", reqs[1].Params["name"])
}
