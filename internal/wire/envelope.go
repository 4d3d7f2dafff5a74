package wire

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the protocol version carried by every envelope.
const JSONRPCVersion = "2.0"

// Request is a JSON-RPC 2.0 request envelope. IDs are assigned by the
// protocol client: 1 is reserved for the initialize handshake, tool calls
// start at 2 and are never reused within a session.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope. A well-formed response
// carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a response envelope.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ToolResult is the result payload of a successful tools/call response.
type ToolResult struct {
	Content []ContentPart `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentPart is one fragment of a tool result. Only "text" parts are
// consumed by the extractor; other kinds are ignored.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCall builds a tools/call request for the named tool. The envelope ID
// is assigned later by the protocol client.
func ToolCall(name string, args map[string]any) Request {
	if args == nil {
		args = map[string]any{}
	}
	return Request{
		JSONRPC: JSONRPCVersion,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      name,
			"arguments": args,
		},
	}
}

// MethodCall builds a request for a bare protocol method such as
// prompts/list or prompts/get.
func MethodCall(method string, params map[string]any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
}
