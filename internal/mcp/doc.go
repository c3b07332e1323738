// Package mcp implements the Model Context Protocol request/response
// engine: line-delimited JSON-RPC 2.0 framing over stdio, envelope
// validation, session negotiation, and method dispatch.
//
// The package owns the protocol surface only. Tool semantics live
// behind the ToolService interface; backend access lives in
// internal/backend. Responses to concurrent requests are written in
// completion order and correlated by id, matching the protocol's
// single-client assumptions.
package mcp
