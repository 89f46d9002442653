// Package mcp implements a Model Context Protocol (MCP) server that exposes
// form rendering as tools and resources.
//
// The server speaks newline-delimited JSON-RPC 2.0 over stdio. Requests are
// handled one at a time in arrival order; notifications get no response.
//
// # Client configuration
//
//	{
//	  "mcpServers": {
//	    "formlayout": {
//	      "command": "formlayout-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ServerName is reported to clients during initialisation.
const ServerName = "formlayout-mcp"

// maxMessage bounds one request line. render_form answers can be large, but
// requests carry at most an inline form description.
const maxMessage = 10 << 20

// Server dispatches MCP requests to registered tools and resources.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	methods   map[string]methodHandler
	input     io.Reader
	output    io.Writer
	logger    *zap.Logger
	version   string
	mu        sync.Mutex
}

type methodHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger. Logs must not go to the server's output,
// which carries the protocol.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) ServerOption {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server on stdin and stdout.
func NewServer(opts ...ServerOption) *Server {
	return NewServerWithIO(os.Stdin, os.Stdout, opts...)
}

// NewServerWithIO creates a server on the given streams.
func NewServerWithIO(in io.Reader, out io.Writer, opts ...ServerOption) *Server {
	s := &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		logger:    zap.NewNop(),
		version:   "dev",
	}
	s.methods = map[string]methodHandler{
		"initialize":     s.initialize,
		"ping":           func(context.Context, json.RawMessage) (interface{}, error) { return struct{}{}, nil },
		"tools/list":     s.listTools,
		"tools/call":     s.callTool,
		"resources/list": s.listResources,
		"resources/read": s.readResource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTool registers t, replacing a tool of the same name.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers r under its URI.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run serves requests until the input ends. Cancelling ctx stops the loop
// before the next request and is passed to running handlers.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 64<<10), maxMessage)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, &rpcError{code: codeParseError, message: "Parse error", data: err.Error()})
			continue
		}
		s.dispatch(ctx, req)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req jsonrpcRequest) {
	start := time.Now()
	log := s.logger.With(zap.String("method", req.Method))

	if req.notification() {
		// initialized, notifications/* and cancellations need no answer.
		log.Debug("mcp notification")
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeError(req.ID, &rpcError{code: codeInvalidRequest, message: "Invalid request"})
		return
	}

	h, ok := s.methods[req.Method]
	if !ok {
		s.writeError(req.ID, &rpcError{code: codeMethodNotFound, message: "Method not found", data: req.Method})
		return
	}

	result, err := s.safeCall(ctx, h, req.Params)
	log.Debug("mcp request", zap.Duration("latency", time.Since(start)), zap.Error(err))
	if err != nil {
		var re *rpcError
		if !errors.As(err, &re) {
			re = &rpcError{code: codeInternalError, message: "Internal error", data: err.Error()}
		}
		s.writeError(req.ID, re)
		return
	}
	s.write(jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
}

// safeCall runs h, turning a panic into an internal error so one bad
// request does not end the session.
func (s *Server) safeCall(ctx context.Context, h methodHandler, params json.RawMessage) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("mcp handler panic", zap.Any("panic", p))
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx, params)
}

func (s *Server) initialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams("Invalid params", err.Error())
		}
	}
	s.logger.Info("mcp client connected",
		zap.String("client", p.ClientInfo.Name),
		zap.String("client_version", p.ClientInfo.Version),
		zap.String("protocol", p.ProtocolVersion),
	)
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		ServerInfo: serverInfo{Name: ServerName, Version: s.version},
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (interface{}, error) {
	out := toolsListResult{Tools: make([]Tool, 0, len(s.tools))}
	for _, name := range sortedKeys(s.tools) {
		out.Tools = append(out.Tools, s.tools[name])
	}
	return out, nil
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params", err.Error())
	}
	tool, ok := s.tools[p.Name]
	if !ok {
		return nil, invalidParams("Unknown tool", p.Name)
	}
	if p.Arguments == nil {
		p.Arguments = map[string]interface{}{}
	}

	start := time.Now()
	result, err := tool.Handler(ctx, p.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", p.Name), zap.Error(err))
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		}, nil
	}
	s.logger.Info("tool called", zap.String("tool", p.Name), zap.Bool("is_error", result.IsError), zap.Duration("latency", time.Since(start)))
	return result, nil
}

func (s *Server) listResources(context.Context, json.RawMessage) (interface{}, error) {
	out := resourcesListResult{Resources: make([]Resource, 0, len(s.resources))}
	for _, uri := range sortedKeys(s.resources) {
		out.Resources = append(out.Resources, s.resources[uri])
	}
	return out, nil
}

func (s *Server) readResource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params", err.Error())
	}
	base, _, _ := strings.Cut(p.URI, "?")
	r, ok := s.resources[base]
	if !ok {
		return nil, invalidParams("Unknown resource", p.URI)
	}
	contents, err := r.Handler(ctx, p.URI)
	if err != nil {
		return nil, &rpcError{code: codeInternalError, message: "Resource error", data: err.Error()}
	}
	return resourcesReadResult{Contents: contents}, nil
}

func (s *Server) writeError(id *json.RawMessage, e *rpcError) {
	s.write(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonrpcError{Code: e.code, Message: e.message, Data: e.data},
	})
}

func (s *Server) write(resp jsonrpcResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding response", zap.Error(err))
		return
	}
	if _, err := s.output.Write(append(data, '\n')); err != nil {
		s.logger.Error("writing response", zap.Error(err))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
