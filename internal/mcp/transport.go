package mcp

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

// Transport moves one message per line in each direction.
type Transport interface {
	// ReadMessage returns the next non-empty input line without its
	// trailing newline. io.EOF signals a closed input stream.
	ReadMessage() ([]byte, error)
	// WriteMessage writes one message as a single newline-terminated
	// line. Embedded line breaks in the payload are replaced, never
	// allowed to split the message.
	WriteMessage(message []byte) error
	Close() error
}

// StdioTransport implements Transport over a reader/writer pair,
// normally stdin and stdout.
type StdioTransport struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
}

// NewStdioTransport creates a transport bound to the process's stdin
// and stdout.
func NewStdioTransport() *StdioTransport {
	return NewTransport(os.Stdin, os.Stdout)
}

// NewTransport creates a transport over arbitrary streams. Tests use
// this with in-memory buffers.
func NewTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadMessage reads the next line, silently skipping blank lines. At
// least one real client sends a spurious empty line during its
// handshake; those are protocol-incidental, not errors.
func (t *StdioTransport) ReadMessage() ([]byte, error) {
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			// A final unterminated line is still a message.
			if err == io.EOF && strings.TrimSpace(line) != "" {
				return []byte(strings.TrimSpace(line)), nil
			}
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return []byte(line), nil
	}
}

// WriteMessage writes message as exactly one line. The write lock keeps
// concurrently resolving handlers from interleaving output.
func (t *StdioTransport) WriteMessage(message []byte) error {
	out := sanitizeLine(message)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.Write(out); err != nil {
		return err
	}
	_, err := t.writer.Write([]byte{'\n'})
	return err
}

// Close closes the transport (no-op for stdio).
func (t *StdioTransport) Close() error {
	return nil
}

// sanitizeLine enforces the one-message-per-line invariant: any raw
// CR/LF that survived serialization is replaced with a space rather
// than splitting the frame.
func sanitizeLine(message []byte) []byte {
	dirty := false
	for _, b := range message {
		if b == '\n' || b == '\r' {
			dirty = true
			break
		}
	}
	if !dirty {
		return message
	}
	out := make([]byte, len(message))
	copy(out, message)
	for i, b := range out {
		if b == '\n' || b == '\r' {
			out[i] = ' '
		}
	}
	return out
}
