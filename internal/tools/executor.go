package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"vectormcp/internal/backend"
	"vectormcp/internal/config"
	"vectormcp/internal/logging"
	"vectormcp/internal/mcp"
)

// CredentialSource yields the backend credential. config.CredentialManager
// is the production implementation (env first, OS keyring second).
type CredentialSource interface {
	ResolveAPIKey() (string, error)
}

// Service executes tool calls against the backend. It implements
// mcp.ToolService.
//
// The backend client is constructed lazily on first use and replaced
// when the resolved credential changes, so the process can start and
// answer tools/list with no credential configured at all. Replacement
// is not atomic with respect to in-flight calls; those finish on the
// old client, which is harmless for these independent operations.
type Service struct {
	cfg    *config.Config
	creds  CredentialSource
	logger *logging.AppLogger

	mu        sync.Mutex
	client    *backend.Client
	clientKey string
}

// NewService creates the tool executor.
func NewService(cfg *config.Config, creds CredentialSource, logger *logging.AppLogger) *Service {
	return &Service{
		cfg:    cfg,
		creds:  creds,
		logger: logger,
	}
}

// List serves the static catalog.
func (s *Service) List() []mcp.ToolDescriptor {
	return Descriptors()
}

// CredentialCheck verifies that a credential resolves and has the
// expected shape, without calling the backend. Used by eager mode.
func (s *Service) CredentialCheck() error {
	key, err := s.creds.ResolveAPIKey()
	if err != nil {
		return err
	}
	return config.ValidateAPIKeyFormat(key)
}

// Call resolves, validates and executes one tool invocation. Once the
// envelope was valid, every failure here is reported in-band with
// IsError set: a domain failure must not be indistinguishable from a
// protocol malfunction, and must leave the session usable.
func (s *Service) Call(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
	tool, ok := Lookup(name)
	if !ok {
		return mcp.ErrorResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArgs(tool.InputSchema, args); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
	}

	client, err := s.backendClient()
	if err != nil {
		// Credential absence is fatal only here, at first real use.
		return mcp.ErrorResult(fmt.Sprintf("Cannot call %s: %v", name, err))
	}

	start := time.Now()
	raw, err := tool.Run(ctx, client, args)
	s.logger.LogPerformance("tool "+name, start)
	if err != nil {
		return s.backendFailure(name, err)
	}

	return mcp.TextResult(renderBody(raw))
}

// backendClient returns the current client, building a fresh one when
// the credential has changed since the last call.
func (s *Service) backendClient() (*backend.Client, error) {
	key, err := s.creds.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil || s.clientKey != key {
		s.logger.Debug("Building backend client", "base_url", s.cfg.BaseURL, "credential", config.Redact(key))
		s.client = backend.NewClient(s.cfg.BaseURL, key, s.cfg.RequestTimeout())
		s.clientKey = key
	}
	return s.client, nil
}

// backendFailure maps a backend error into the closed taxonomy and
// wraps it as an in-band result.
func (s *Service) backendFailure(name string, err error) mcp.ToolResult {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		code := mcp.MapBackendStatus(statusErr.StatusCode)
		s.logger.Debug("Backend rejected tool call",
			"tool", name, "status", statusErr.StatusCode, "code", code)
		return mcp.ErrorResult(fmt.Sprintf("%s failed: %s (code %d): %s",
			name, mcp.CodeMessage(code), code, statusErr.Message))
	}

	// Network failures and timeouts take the same in-band path as HTTP
	// errors; there is no separate code path for them.
	s.logger.Debug("Backend call failed", "tool", name, "error", err)
	return mcp.ErrorResult(fmt.Sprintf("%s failed: %s (code %d): %v",
		name, mcp.CodeMessage(mcp.CodeInternalError), mcp.CodeInternalError, err))
}

// renderBody pretty-prints JSON bodies verbatim, preserving full
// fidelity rather than re-shaping them. Non-JSON bodies (file content
// downloads) pass through as-is.
func renderBody(raw []byte) string {
	var buf bytes.Buffer
	if json.Valid(raw) {
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			return buf.String()
		}
	}
	if !utf8.Valid(raw) {
		return fmt.Sprintf("(binary content, %d bytes)", len(raw))
	}
	return string(raw)
}
