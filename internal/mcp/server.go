package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"rollcall/internal/log"
	"rollcall/internal/pubsub"
	"rollcall/internal/tracing"
)

// ToolHandler is a function that handles a tool call.
// It receives the parsed arguments and returns a result or error.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*ToolCallResult, error)

// ResourceHandler returns the current contents of a registered resource.
type ResourceHandler func(ctx context.Context) (ResourceContents, error)

// ToolEvent describes one tool invocation. The server publishes these on its
// broker so observers (the TUI activity feed) can watch traffic without
// touching the transport.
type ToolEvent struct {
	Timestamp    time.Time
	ToolName     string
	RequestJSON  json.RawMessage
	ResponseJSON json.RawMessage
	Duration     time.Duration
	IsError      bool
	Error        string
}

// Server implements an MCP server over stdio.
type Server struct {
	info         ImplementationInfo
	instructions string
	tools        map[string]Tool
	handlers     map[string]ToolHandler
	resources    map[string]Resource
	readers      map[string]ResourceHandler

	reader io.Reader
	writer io.Writer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex

	initialized bool

	tracer trace.Tracer

	// broker publishes a ToolEvent per tools/call
	broker *pubsub.Broker[ToolEvent]
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithInstructions sets the server instructions sent during initialization.
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// WithTracer enables span emission for tool calls. Defaults to a no-op
// tracer.
func WithTracer(t trace.Tracer) ServerOption {
	return func(s *Server) {
		s.tracer = t
	}
}

// NewServer creates a new MCP server.
func NewServer(name, version string, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		info: ImplementationInfo{
			Name:    name,
			Version: version,
		},
		tools:     make(map[string]Tool),
		handlers:  make(map[string]ToolHandler),
		resources: make(map[string]Resource),
		readers:   make(map[string]ResourceHandler),
		ctx:       ctx,
		cancel:    cancel,
		tracer:    noop.NewTracerProvider().Tracer("noop"),
		broker:    pubsub.NewBrokerWithBuffer[ToolEvent](128),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RegisterTool registers a tool with its handler.
func (s *Server) RegisterTool(tool Tool, handler ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name] = tool
	s.handlers[tool.Name] = handler
	log.Debug(log.CatMCP, "registered tool", "name", tool.Name)
}

// RegisterResource registers a readable resource with its handler.
func (s *Server) RegisterResource(resource Resource, handler ResourceHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[resource.URI] = resource
	s.readers[resource.URI] = handler
	log.Debug(log.CatMCP, "registered resource", "uri", resource.URI)
}

// Broker returns the tool event broker.
func (s *Server) Broker() *pubsub.Broker[ToolEvent] {
	return s.broker
}

// Serve starts the server, reading from stdin and writing to stdout.
func (s *Server) Serve(stdin io.Reader, stdout io.Writer) error {
	s.mu.Lock()
	s.reader = stdin
	s.writer = stdout
	s.mu.Unlock()

	return s.run()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.cancel()
	s.wg.Wait()
	s.broker.Close()
}

// run is the main server loop.
func (s *Server) run() error {
	scanner := bufio.NewScanner(s.reader)
	// Increase buffer for large messages
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		log.Debug(log.CatMCP, "received message", "raw", string(line))

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError(nil, NewParseError(err.Error()))
			continue
		}

		// A populated, non-null ID makes this a request; anything else is a
		// notification. json.RawMessage is []byte, so length distinguishes
		// an absent ID from a present one.
		if len(req.ID) > 0 && string(req.ID) != "null" {
			s.handleRequest(&req)
		} else {
			s.handleNotification(&req)
		}

		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debug(log.CatMCP, "scanner error", "error", err)
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

// handleRequest processes a JSON-RPC request and sends a response.
func (s *Server) handleRequest(req *Request) {
	log.Debug(log.CatMCP, "handling request", "method", req.Method)

	var result any
	var rpcErr *RPCError

	switch req.Method {
	case "initialize":
		result, rpcErr = s.handleInitialize(req.Params)

	case "tools/list":
		result, rpcErr = s.handleToolsList(req.Params)

	case "tools/call":
		result, rpcErr = s.handleToolsCall(req.Params)

	case "resources/list":
		result, rpcErr = s.handleResourcesList(req.Params)

	case "resources/read":
		result, rpcErr = s.handleResourcesRead(req.Params)

	case "ping":
		result = struct{}{}

	default:
		rpcErr = NewMethodNotFound(req.Method)
	}

	if rpcErr != nil {
		s.sendError(req.ID, rpcErr)
	} else {
		s.sendResult(req.ID, result)
	}
}

// handleNotification processes a JSON-RPC notification (no response needed).
func (s *Server) handleNotification(req *Request) {
	log.Debug(log.CatMCP, "handling notification", "method", req.Method)

	switch req.Method {
	case "notifications/initialized":
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		log.Debug(log.CatMCP, "client initialized")

	case "notifications/cancelled":
		log.Debug(log.CatMCP, "request cancelled")

	default:
		// Unknown notifications are ignored per spec
		log.Debug(log.CatMCP, "unknown notification", "method", req.Method)
	}
}

// handleInitialize processes the initialize request.
func (s *Server) handleInitialize(params json.RawMessage) (any, *RPCError) {
	var p InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewInvalidParams(err.Error())
		}
	}

	log.Debug(log.CatMCP, "initialize request",
		"clientVersion", p.ProtocolVersion,
		"clientName", p.ClientInfo.Name)

	capabilities := ServerCapability{
		Tools: &ToolsCapability{
			ListChanged: false, // We don't emit list change notifications
		},
	}

	s.mu.RLock()
	if len(s.resources) > 0 {
		capabilities.Resources = &ResourcesCapability{}
	}
	s.mu.RUnlock()

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    capabilities,
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}

	return result, nil
}

// handleToolsList returns the list of available tools, sorted by name so
// listings are stable across calls.
func (s *Server) handleToolsList(_ json.RawMessage) (any, *RPCError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	return ToolsListResult{Tools: tools}, nil
}

// handleToolsCall invokes a tool and returns its result.
func (s *Server) handleToolsCall(params json.RawMessage) (any, *RPCError) {
	var p ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParams(err.Error())
	}

	s.mu.RLock()
	handler, ok := s.handlers[p.Name]
	s.mu.RUnlock()

	if !ok {
		return nil, NewToolNotFound(p.Name)
	}

	log.Debug(log.CatMCP, "calling tool", "name", p.Name)

	ctx, span := s.tracer.Start(s.ctx, tracing.SpanPrefixTool+p.Name,
		trace.WithAttributes(attribute.String(tracing.AttrToolName, p.Name)))
	startTime := time.Now()
	result, err := handler(ctx, p.Arguments)
	duration := time.Since(startTime)

	s.publishToolEvent(p.Name, params, result, err, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		log.Debug(log.CatMCP, "tool execution failed", "name", p.Name, "error", err)
		// Return the error as a tool result, not an RPC error
		return ErrorResult(err.Error()), nil
	}

	if result != nil && result.IsError {
		span.SetStatus(codes.Error, "tool reported error")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	return result, nil
}

// handleResourcesList returns the list of readable resources.
func (s *Server) handleResourcesList(_ json.RawMessage) (any, *RPCError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]Resource, 0, len(s.resources))
	for _, res := range s.resources {
		resources = append(resources, res)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })

	return ResourcesListResult{Resources: resources}, nil
}

// handleResourcesRead reads one resource by URI.
func (s *Server) handleResourcesRead(params json.RawMessage) (any, *RPCError) {
	var p ResourcesReadParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParams(err.Error())
	}

	s.mu.RLock()
	handler, ok := s.readers[p.URI]
	s.mu.RUnlock()

	if !ok {
		return nil, NewResourceNotFound(p.URI)
	}

	log.Debug(log.CatMCP, "reading resource", "uri", p.URI)

	contents, err := handler(s.ctx)
	if err != nil {
		log.Debug(log.CatMCP, "resource read failed", "uri", p.URI, "error", err)
		return nil, NewInternalError(err.Error())
	}

	return ResourcesReadResult{Contents: []ResourceContents{contents}}, nil
}

// publishToolEvent publishes a ToolEvent for the tool call.
func (s *Server) publishToolEvent(toolName string, requestParams json.RawMessage, result *ToolCallResult, err error, duration time.Duration) {
	if s.broker == nil {
		return
	}

	evt := ToolEvent{
		Timestamp:   time.Now(),
		ToolName:    toolName,
		RequestJSON: requestParams,
		Duration:    duration,
	}

	if result != nil {
		if respJSON, marshalErr := json.Marshal(result); marshalErr == nil {
			evt.ResponseJSON = respJSON
		}
		evt.IsError = result.IsError
	}

	if err != nil {
		evt.IsError = true
		evt.Error = err.Error()
	}

	s.broker.Publish(pubsub.CreatedEvent, evt)
}

// sendResult sends a success response.
func (s *Server) sendResult(id json.RawMessage, result any) {
	resp := NewResponse(id, result)
	s.send(resp)
}

// sendError sends an error response.
func (s *Server) sendError(id json.RawMessage, err *RPCError) {
	resp := NewErrorResponse(id, err)
	s.send(resp)
}

// send marshals and writes a response to stdout.
func (s *Server) send(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Debug(log.CatMCP, "failed to marshal response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return
	}

	// MCP uses newline-delimited JSON
	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		log.Debug(log.CatMCP, "failed to write response", "error", err)
	}

	log.Debug(log.CatMCP, "sent response", "raw", string(data[:len(data)-1]))
}
