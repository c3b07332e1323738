package mcp

import "net/http"

// JSON-RPC 2.0 reserved error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Implementation-defined codes in the -32000 band for backend and
// session failures. -32002 follows the common MCP convention for
// "server not initialized".
const (
	CodeUnauthorized   = -32001
	CodeNotInitialized = -32002
	CodeForbidden      = -32003
	CodeNotFound       = -32004
	CodeRateLimited    = -32005
)

// FailureKind classifies local (non-backend) failures.
type FailureKind int

const (
	FailureParse FailureKind = iota
	FailureInvalidRequest
	FailureMethodNotFound
	FailureInvalidParams
)

// MapBackendStatus translates a backend HTTP status into the closed
// protocol error taxonomy. Pure: no I/O, no side effects.
func MapBackendStatus(status int) int {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternalError
	}
}

// MapLocalFailure translates a local failure kind into its protocol
// error code.
func MapLocalFailure(kind FailureKind) int {
	switch kind {
	case FailureParse:
		return CodeParseError
	case FailureInvalidRequest:
		return CodeInvalidRequest
	case FailureMethodNotFound:
		return CodeMethodNotFound
	case FailureInvalidParams:
		return CodeInvalidParams
	default:
		return CodeInternalError
	}
}

// CodeMessage returns the canonical short message for an error code.
func CodeMessage(code int) string {
	switch code {
	case CodeParseError:
		return "Parse error"
	case CodeInvalidRequest:
		return "Invalid request"
	case CodeMethodNotFound:
		return "Method not found"
	case CodeInvalidParams:
		return "Invalid params"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeNotInitialized:
		return "Server not initialized"
	case CodeForbidden:
		return "Forbidden"
	case CodeNotFound:
		return "Not found"
	case CodeRateLimited:
		return "Rate limited"
	default:
		return "Internal error"
	}
}
