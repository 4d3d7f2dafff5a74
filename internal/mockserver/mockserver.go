// Package mockserver implements a configurable stand-in for a real tool
// server. It accepts both Content-Length framed requests and bare JSON lines
// on stdin, answers with newline-delimited JSON on stdout, and serves canned
// tool and prompt responses from a YAML definition. It exists so the driver
// and suites can be exercised without credentials or a network.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"mcpcheck/internal/wire"
	"mcpcheck/pkg/logging"
)

// ToolConfig defines one mock tool.
type ToolConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Response is the text returned from a call. It is often a JSON
	// document, which the driver then decodes a second time.
	Response string `yaml:"response"`
	// Error makes every call to this tool answer with a protocol error.
	Error string `yaml:"error"`
	// ErrorCode accompanies Error; defaults to -32000.
	ErrorCode int `yaml:"error_code"`
	// Delay postpones the response, for exercising settle behavior.
	Delay time.Duration `yaml:"-"`
	// DelayRaw is Delay in Go duration syntax for YAML files.
	DelayRaw string `yaml:"delay"`
}

// PromptConfig defines one mock prompt.
type PromptConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Text        string `yaml:"text"`
}

// Config is the full mock server definition.
type Config struct {
	Name    string         `yaml:"name"`
	Tools   []ToolConfig   `yaml:"tools"`
	Prompts []PromptConfig `yaml:"prompts"`
}

// LoadConfig reads a server definition from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading mock config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing mock config %s: %w", path, err)
	}
	for i := range cfg.Tools {
		if cfg.Tools[i].DelayRaw == "" {
			continue
		}
		d, err := time.ParseDuration(cfg.Tools[i].DelayRaw)
		if err != nil {
			return Config{}, fmt.Errorf("mock config %s: tool %q: bad delay %q: %w", path, cfg.Tools[i].Name, cfg.Tools[i].DelayRaw, err)
		}
		cfg.Tools[i].Delay = d
	}
	return cfg, nil
}

// DefaultConfig returns a small built-in definition that mirrors the shape
// of the real server: a couple of list tools, a lookup tool, an always-error
// tool, and the usage-guide prompt.
func DefaultConfig() Config {
	return Config{
		Name: "mock-onelogin",
		Tools: []ToolConfig{
			{
				Name:        "onelogin_list_users",
				Description: "List users",
				Response:    `[{"id":255838675,"email":"test@example.com"},{"id":2,"email":"second@example.com"}]`,
			},
			{
				Name:        "onelogin_get_user",
				Description: "Get a single user",
				Response:    `{"id":255838675,"firstname":"Test","lastname":"User"}`,
			},
			{
				Name:        "onelogin_list_roles",
				Description: "List roles",
				Response:    `[{"id":892924,"name":"Test_Role"}]`,
			},
			{
				Name:        "onelogin_lock_user",
				Description: "Lock a user",
				Error:       "Locking the account owner is forbidden",
				ErrorCode:   -32000,
			},
		},
		Prompts: []PromptConfig{
			{
				Name:        "onelogin-usage-guide",
				Description: "How to use the OneLogin tools",
				Text:        "OneLogin usage guide: call onelogin_list_users first.",
			},
		},
	}
}

// Server speaks the protocol over a reader/writer pair.
type Server struct {
	cfg     Config
	tools   map[string]ToolConfig
	prompts map[string]PromptConfig
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		tools:   make(map[string]ToolConfig, len(cfg.Tools)),
		prompts: make(map[string]PromptConfig, len(cfg.Prompts)),
	}
	for _, t := range cfg.Tools {
		s.tools[t.Name] = t
	}
	for _, p := range cfg.Prompts {
		s.prompts[p.Name] = p
	}
	return s
}

// Serve reads requests until EOF or cancellation. Responses go out as one
// JSON object per line.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	decoder := wire.NewDecoder()
	encoder := json.NewEncoder(out)
	chunk := make([]byte, 4096)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		for {
			raw, err := decoder.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				logging.Warn("MockServer", "Skipping malformed input: %v", err)
				continue
			}
			if resp := s.dispatch(raw); resp != nil {
				if err := encoder.Encode(resp); err != nil {
					return fmt.Errorf("writing response: %w", err)
				}
			}
		}

		n, err := in.Read(chunk)
		if n > 0 {
			decoder.Write(chunk[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading requests: %w", err)
		}
	}
}

func (s *Server) dispatch(raw json.RawMessage) any {
	var req wire.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		logging.Warn("MockServer", "Undecodable request: %v", err)
		return nil
	}
	logging.Debug("MockServer", "Handling %s (id %d)", req.Method, req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolCall(req)
	case "prompts/list":
		return s.handlePromptsList(req)
	case "prompts/get":
		return s.handlePromptsGet(req)
	case "notifications/initialized":
		return nil
	default:
		return rpcError(req.ID, -32601, "Method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req wire.Request) any {
	return result(req.ID, map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]any{
			"tools":   map[string]any{},
			"prompts": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.cfg.Name,
			"version": "1.0.0",
		},
	})
}

func (s *Server) handleToolsList(req wire.Request) any {
	tools := make([]mcp.Tool, 0, len(s.cfg.Tools))
	for _, t := range s.cfg.Tools {
		tools = append(tools, mcp.NewTool(t.Name, mcp.WithDescription(t.Description)))
	}
	return result(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolCall(req wire.Request) any {
	name, _ := req.Params["name"].(string)
	tool, ok := s.tools[name]
	if !ok {
		return rpcError(req.ID, -32602, "Tool not found: "+name)
	}

	if tool.Delay > 0 {
		time.Sleep(tool.Delay)
	}
	if tool.Error != "" {
		code := tool.ErrorCode
		if code == 0 {
			code = -32000
		}
		return rpcError(req.ID, code, tool.Error)
	}
	return result(req.ID, mcp.NewToolResultText(tool.Response))
}

func (s *Server) handlePromptsList(req wire.Request) any {
	prompts := make([]map[string]any, 0, len(s.cfg.Prompts))
	for _, p := range s.cfg.Prompts {
		prompts = append(prompts, map[string]any{
			"name":        p.Name,
			"description": p.Description,
		})
	}
	return result(req.ID, map[string]any{"prompts": prompts})
}

func (s *Server) handlePromptsGet(req wire.Request) any {
	name, _ := req.Params["name"].(string)
	prompt, ok := s.prompts[name]
	if !ok {
		return rpcError(req.ID, -32602, "Prompt not found: "+name)
	}
	return result(req.ID, map[string]any{
		"description": prompt.Description,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": mcp.NewTextContent(prompt.Text),
			},
		},
	})
}

func result(id int64, payload any) map[string]any {
	return map[string]any{"jsonrpc": wire.JSONRPCVersion, "id": id, "result": payload}
}

func rpcError(id int64, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": wire.JSONRPCVersion,
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	}
}
