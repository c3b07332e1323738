package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"vectormcp/internal/logging"

	"github.com/google/uuid"
)

// ToolService is what the dispatcher needs from the tool layer: the
// static catalog and an invocation that always yields a ToolResult
// (domain failures ride in-band, see ToolResult).
type ToolService interface {
	List() []ToolDescriptor
	Call(ctx context.Context, name string, args map[string]any) ToolResult
}

// handlerFunc handles one protocol method. A nil *ErrorObject means the
// returned value is the result.
type handlerFunc func(ctx context.Context, req *Request) (any, *ErrorObject)

// Server owns the session state machine and dispatches validated
// envelopes to protocol methods.
//
// Each input line is handled on its own goroutine; responses are
// written in completion order, not arrival order. That reordering is a
// protocol property clients rely on id correlation for, so no queue is
// introduced to "fix" it.
type Server struct {
	name    string
	version string

	transport Transport
	tools     ToolService
	logger    *logging.AppLogger

	// eagerCredentialCheck makes initialize fail when credentialCheck
	// fails. Default behavior is lazy: the first tool call pays.
	eagerCredentialCheck bool
	credentialCheck      func() error

	handlers map[string]handlerFunc

	mu          sync.Mutex
	initialized bool

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithEagerCredentialCheck makes session negotiation verify that a
// credential resolves, instead of deferring to the first invocation.
func WithEagerCredentialCheck(check func() error) Option {
	return func(s *Server) {
		s.eagerCredentialCheck = true
		s.credentialCheck = check
	}
}

// NewServer creates a server speaking MCP over the given transport.
func NewServer(name, version string, transport Transport, tools ToolService, logger *logging.AppLogger, opts ...Option) *Server {
	s := &Server{
		name:      name,
		version:   version,
		transport: transport,
		tools:     tools,
		logger:    logger,
	}
	s.handlers = map[string]handlerFunc{
		// Canonical MCP method names, plus the session-negotiation
		// aliases, all bound to the same handlers so the catalog and
		// dispatch can never diverge between dialects.
		"initialize":                s.handleInitialize,
		"session.negotiate":         s.handleInitialize,
		"tools/list":                s.handleListTools,
		"capabilities.list":         s.handleListTools,
		"tools/call":                s.handleCallTool,
		"capabilities.invoke":       s.handleCallTool,
		"ping":                      s.handlePing,
		"notifications/initialized": s.handleInitializedNotice,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialized reports whether session negotiation has completed.
func (s *Server) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Serve reads lines until EOF or context cancellation. Every line is
// dispatched on its own goroutine; Serve waits for in-flight handlers
// before returning so the last responses are not lost on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.wg.Wait()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			msg, err := s.transport.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- msg:
			case <-ctx.Done():
				// Serve has stopped consuming; abandon the line instead
				// of blocking here forever.
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down on signal")
			return nil
		case msg, ok := <-lines:
			if !ok {
				err := <-readErr
				if err == io.EOF {
					s.logger.Info("Input closed, stopping")
					return nil
				}
				s.logger.Error("Transport read failed", "error", err)
				return err
			}
			s.wg.Add(1)
			go func(line []byte) {
				defer s.wg.Done()
				s.handleLine(ctx, line)
			}(msg)
		}
	}
}

// handleLine runs the full pipeline for one input line: parse, envelope
// validation, dispatch, serialization. Panics are converted into an
// InternalError response; nothing that happens here may kill the
// process.
func (s *Server) handleLine(ctx context.Context, line []byte) {
	rid := uuid.NewString()[:8]

	var req Request
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered from handler panic", "rid", rid, "panic", fmt.Sprintf("%v", r))
			s.respondError(&req, CodeInternalError, CodeMessage(CodeInternalError))
		}
	}()

	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Debug("Unparseable input line", "rid", rid, "error", err)
		// No usable id exists in garbage input; the response id is null.
		s.writeResponse(Response{JSONRPC: "2.0", Error: &ErrorObject{
			Code:    CodeParseError,
			Message: CodeMessage(CodeParseError),
		}})
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.logger.Debug("Invalid request envelope", "rid", rid, "method", req.Method)
		s.respondError(&req, CodeInvalidRequest, CodeMessage(CodeInvalidRequest))
		return
	}

	handler, ok := s.handlers[req.Method]
	if !ok {
		s.logger.Debug("Unknown method", "rid", rid, "method", req.Method)
		s.respondError(&req, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
		return
	}

	s.logger.Debug("Dispatching", "rid", rid, "method", req.Method)
	result, errObj := handler(ctx, &req)
	if req.IsNotification() {
		// Notifications never produce an output line, success or not.
		return
	}
	if errObj != nil {
		s.respondError(&req, errObj.Code, errObj.Message)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Result serialization failed", "rid", rid, "error", err)
		s.respondError(&req, CodeInternalError, CodeMessage(CodeInternalError))
		return
	}
	s.writeResponse(Response{JSONRPC: "2.0", ID: req.ID, Result: raw})
}

// respondError writes a protocol-level error envelope, unless the
// request was a notification.
func (s *Server) respondError(req *Request, code int, message string) {
	if req.IsNotification() && req.Method != "" {
		return
	}
	s.writeResponse(Response{JSONRPC: "2.0", ID: req.ID, Error: &ErrorObject{
		Code:    code,
		Message: message,
	}})
}

// writeResponse serializes and frames one response. A write failure is
// logged and swallowed: the process must outlive a broken pipe long
// enough to exit cleanly.
func (s *Server) writeResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Response serialization failed", "error", err)
		return
	}
	if err := s.transport.WriteMessage(data); err != nil {
		s.logger.Error("Transport write failed", "error", err)
	}
}

func (s *Server) handleInitialize(ctx context.Context, req *Request) (any, *ErrorObject) {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &ErrorObject{Code: CodeInvalidParams, Message: "Malformed initialize params"}
		}
	}

	if s.eagerCredentialCheck && s.credentialCheck != nil {
		if err := s.credentialCheck(); err != nil {
			// The error string from credential resolution names the fix
			// without containing any key material.
			return nil, &ErrorObject{Code: CodeInvalidParams, Message: err.Error()}
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	clientName := ""
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	s.logger.Info("Session negotiated", "client", clientName, "clientProtocol", params.ProtocolVersion)

	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    Capabilities{Tools: ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
	}, nil
}

// handleListTools serves the static catalog. Allowed before
// negotiation: the catalog is metadata, not an operation.
func (s *Server) handleListTools(ctx context.Context, req *Request) (any, *ErrorObject) {
	return ListToolsResult{Tools: s.tools.List()}, nil
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) (any, *ErrorObject) {
	if !s.Initialized() {
		return nil, &ErrorObject{Code: CodeNotInitialized, Message: CodeMessage(CodeNotInitialized)}
	}

	var params CallToolParams
	if len(req.Params) == 0 {
		return nil, &ErrorObject{Code: CodeInvalidParams, Message: "Missing tool call params"}
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, &ErrorObject{Code: CodeInvalidParams, Message: "Malformed tool call params"}
	}
	if params.Name == "" {
		return nil, &ErrorObject{Code: CodeInvalidParams, Message: "Tool name is required"}
	}

	return s.tools.Call(ctx, params.Name, params.Arguments), nil
}

func (s *Server) handlePing(ctx context.Context, req *Request) (any, *ErrorObject) {
	return struct{}{}, nil
}

// handleInitializedNotice accepts the client's initialized notification.
// It carries no reply either way; the handler exists so the method name
// is not reported as unknown.
func (s *Server) handleInitializedNotice(ctx context.Context, req *Request) (any, *ErrorObject) {
	return struct{}{}, nil
}
