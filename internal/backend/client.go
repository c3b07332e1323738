// Package backend is the HTTP client for the vector-store and files
// REST API. It is deliberately thin: it shapes requests, relays the
// backend's JSON verbatim, and reports non-2xx statuses as StatusError
// values for the caller's error taxonomy. Domain rules (expiration,
// chunking, batch processing) belong entirely to the backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one backend with one credential. It is replaced
// wholesale when the credential changes; it is never mutated.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a backend client. timeout bounds every call
// end-to-end; there is no per-call cancellation beyond it.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// ListOptions are the shared paging knobs on every list endpoint.
// Zero values mean "let the backend pick its defaults".
type ListOptions struct {
	Limit  int
	Order  string
	Filter string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Order != "" {
		q.Set("order", o.Order)
	}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	return q
}

// do runs one backend call and returns the raw response body. Non-2xx
// statuses become StatusError with the backend's own error message when
// one can be extracted.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.roundTrip(req)
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(data),
		}
	}
	return data, nil
}

// extractErrorMessage digs the human-readable message out of the
// backend's error body, falling back to the raw (truncated) body.
func extractErrorMessage(body []byte) string {
	var wrapper struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Message != "" {
		return wrapper.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	if msg == "" {
		msg = "(empty response body)"
	}
	return msg
}

// --- Vector stores (primary resource) ---

// CreateVectorStoreRequest shapes POST /vector_stores.
type CreateVectorStoreRequest struct {
	Name         string            `json:"name"`
	ExpiresAfter *ExpiresAfter     `json:"expires_after,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ExpiresAfter is the backend's expiration policy knob; the anchor is
// always last_active_at.
type ExpiresAfter struct {
	Anchor string `json:"anchor"`
	Days   int    `json:"days"`
}

func (c *Client) CreateVectorStore(ctx context.Context, req CreateVectorStoreRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores", nil, req)
}

func (c *Client) ListVectorStores(ctx context.Context, opts ListOptions) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores", opts.query(), nil)
}

func (c *Client) GetVectorStore(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(id), nil, nil)
}

// ModifyVectorStoreRequest shapes POST /vector_stores/{id}. Nil fields
// are omitted so the backend leaves them untouched.
type ModifyVectorStoreRequest struct {
	Name         *string           `json:"name,omitempty"`
	ExpiresAfter *ExpiresAfter     `json:"expires_after,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (c *Client) ModifyVectorStore(ctx context.Context, id string, req ModifyVectorStoreRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(id), nil, req)
}

func (c *Client) DeleteVectorStore(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, "/vector_stores/"+url.PathEscape(id), nil, nil)
}

// --- Vector-store files (sub-resource) ---

type CreateVectorStoreFileRequest struct {
	FileID     string         `json:"file_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (c *Client) CreateVectorStoreFile(ctx context.Context, storeID string, req CreateVectorStoreFileRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(storeID)+"/files", nil, req)
}

func (c *Client) ListVectorStoreFiles(ctx context.Context, storeID string, opts ListOptions) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(storeID)+"/files", opts.query(), nil)
}

func (c *Client) GetVectorStoreFile(ctx context.Context, storeID, fileID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(storeID)+"/files/"+url.PathEscape(fileID), nil, nil)
}

type UpdateVectorStoreFileRequest struct {
	Attributes map[string]any `json:"attributes"`
}

func (c *Client) UpdateVectorStoreFile(ctx context.Context, storeID, fileID string, req UpdateVectorStoreFileRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(storeID)+"/files/"+url.PathEscape(fileID), nil, req)
}

func (c *Client) DeleteVectorStoreFile(ctx context.Context, storeID, fileID string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, "/vector_stores/"+url.PathEscape(storeID)+"/files/"+url.PathEscape(fileID), nil, nil)
}

// --- File batches (sub-resource) ---

type CreateFileBatchRequest struct {
	FileIDs []string `json:"file_ids"`
}

func (c *Client) CreateFileBatch(ctx context.Context, storeID string, req CreateFileBatchRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(storeID)+"/file_batches", nil, req)
}

func (c *Client) GetFileBatch(ctx context.Context, storeID, batchID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(storeID)+"/file_batches/"+url.PathEscape(batchID), nil, nil)
}

func (c *Client) CancelFileBatch(ctx context.Context, storeID, batchID string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/vector_stores/"+url.PathEscape(storeID)+"/file_batches/"+url.PathEscape(batchID)+"/cancel", nil, nil)
}

func (c *Client) ListFileBatchFiles(ctx context.Context, storeID, batchID string, opts ListOptions) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(storeID)+"/file_batches/"+url.PathEscape(batchID)+"/files", opts.query(), nil)
}

// --- Files (standalone resource) ---

// UploadFile streams a local file to POST /files as multipart form
// data. purpose defaults to "assistants" at the tool layer.
func (c *Client) UploadFile(ctx context.Context, path, purpose string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.roundTrip(req)
}

func (c *Client) ListFiles(ctx context.Context, purpose string) ([]byte, error) {
	q := url.Values{}
	if purpose != "" {
		q.Set("purpose", purpose)
	}
	return c.do(ctx, http.MethodGet, "/files", q, nil)
}

func (c *Client) GetFile(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DeleteFile(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(id), nil, nil)
}

// GetFileContent returns the raw file body, not JSON.
func (c *Client) GetFileContent(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(id)+"/content", nil, nil)
}
