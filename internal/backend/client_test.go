package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-unit-0123456789abcdef"

type capturedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
	header http.Header
}

// captureServer records every request and answers with a fixed body.
func captureServer(t *testing.T, status int, respBody string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, 0)
		if r.Body != nil {
			raw := make([]byte, 1<<16)
			n, _ := r.Body.Read(raw)
			body = raw[:n]
		}
		captured = append(captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   body,
			header: r.Header.Clone(),
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestRequestShaping(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK, `{"ok":true}`)
	c := NewClient(srv.URL, testKey, 5*time.Second)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() ([]byte, error)
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{
			"create store",
			func() ([]byte, error) {
				return c.CreateVectorStore(ctx, CreateVectorStoreRequest{Name: "docs"})
			},
			http.MethodPost, "/vector_stores", "",
		},
		{
			"list stores with options",
			func() ([]byte, error) {
				return c.ListVectorStores(ctx, ListOptions{Limit: 5, Order: "desc"})
			},
			http.MethodGet, "/vector_stores", "limit=5&order=desc",
		},
		{
			"get store",
			func() ([]byte, error) { return c.GetVectorStore(ctx, "vs_1") },
			http.MethodGet, "/vector_stores/vs_1", "",
		},
		{
			"modify store",
			func() ([]byte, error) {
				return c.ModifyVectorStore(ctx, "vs_1", ModifyVectorStoreRequest{})
			},
			http.MethodPost, "/vector_stores/vs_1", "",
		},
		{
			"delete store",
			func() ([]byte, error) { return c.DeleteVectorStore(ctx, "vs_1") },
			http.MethodDelete, "/vector_stores/vs_1", "",
		},
		{
			"attach file",
			func() ([]byte, error) {
				return c.CreateVectorStoreFile(ctx, "vs_1", CreateVectorStoreFileRequest{FileID: "file-9"})
			},
			http.MethodPost, "/vector_stores/vs_1/files", "",
		},
		{
			"list store files with filter",
			func() ([]byte, error) {
				return c.ListVectorStoreFiles(ctx, "vs_1", ListOptions{Filter: "completed"})
			},
			http.MethodGet, "/vector_stores/vs_1/files", "filter=completed",
		},
		{
			"get store file",
			func() ([]byte, error) { return c.GetVectorStoreFile(ctx, "vs_1", "file-9") },
			http.MethodGet, "/vector_stores/vs_1/files/file-9", "",
		},
		{
			"update store file",
			func() ([]byte, error) {
				return c.UpdateVectorStoreFile(ctx, "vs_1", "file-9",
					UpdateVectorStoreFileRequest{Attributes: map[string]any{"k": "v"}})
			},
			http.MethodPost, "/vector_stores/vs_1/files/file-9", "",
		},
		{
			"detach store file",
			func() ([]byte, error) { return c.DeleteVectorStoreFile(ctx, "vs_1", "file-9") },
			http.MethodDelete, "/vector_stores/vs_1/files/file-9", "",
		},
		{
			"create batch",
			func() ([]byte, error) {
				return c.CreateFileBatch(ctx, "vs_1", CreateFileBatchRequest{FileIDs: []string{"a", "b"}})
			},
			http.MethodPost, "/vector_stores/vs_1/file_batches", "",
		},
		{
			"get batch",
			func() ([]byte, error) { return c.GetFileBatch(ctx, "vs_1", "batch-1") },
			http.MethodGet, "/vector_stores/vs_1/file_batches/batch-1", "",
		},
		{
			"cancel batch",
			func() ([]byte, error) { return c.CancelFileBatch(ctx, "vs_1", "batch-1") },
			http.MethodPost, "/vector_stores/vs_1/file_batches/batch-1/cancel", "",
		},
		{
			"list batch files",
			func() ([]byte, error) {
				return c.ListFileBatchFiles(ctx, "vs_1", "batch-1", ListOptions{Limit: 10})
			},
			http.MethodGet, "/vector_stores/vs_1/file_batches/batch-1/files", "limit=10",
		},
		{
			"list files by purpose",
			func() ([]byte, error) { return c.ListFiles(ctx, "assistants") },
			http.MethodGet, "/files", "purpose=assistants",
		},
		{
			"get file",
			func() ([]byte, error) { return c.GetFile(ctx, "file-9") },
			http.MethodGet, "/files/file-9", "",
		},
		{
			"delete file",
			func() ([]byte, error) { return c.DeleteFile(ctx, "file-9") },
			http.MethodDelete, "/files/file-9", "",
		},
		{
			"file content",
			func() ([]byte, error) { return c.GetFileContent(ctx, "file-9") },
			http.MethodGet, "/files/file-9/content", "",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, `{"ok":true}`, string(body))

			req := (*captured)[i]
			assert.Equal(t, tt.wantMethod, req.method)
			assert.Equal(t, tt.wantPath, req.path)
			assert.Equal(t, tt.wantQuery, req.query)
			assert.Equal(t, "Bearer "+testKey, req.auth)
		})
	}
}

func TestNonTwoHundredBecomesStatusError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusNotFound,
		`{"error":{"message":"Vector store not found"}}`)
	c := NewClient(srv.URL, testKey, 5*time.Second)

	_, err := c.GetVectorStore(context.Background(), "vs_missing")
	require.Error(t, err)

	statusErr, ok := err.(*StatusError)
	require.True(t, ok, "expected StatusError, got %T", err)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Vector store not found", statusErr.Message)
}

func TestStatusErrorFallsBackToRawBody(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadGateway, "upstream unhappy")
	c := NewClient(srv.URL, testKey, 5*time.Second)

	_, err := c.ListVectorStores(context.Background(), ListOptions{})
	require.Error(t, err)

	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, "upstream unhappy", statusErr.Message)
}

func TestUploadFileSendsMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello vector store"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "assistants", r.FormValue("purpose"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-new", "object": "file"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testKey, 5*time.Second)
	body, err := c.UploadFile(context.Background(), path, "assistants")
	require.NoError(t, err)
	assert.Contains(t, string(body), "file-new")
}

func TestUploadFileMissingLocalPath(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", testKey, time.Second)
	_, err := c.UploadFile(context.Background(), "/does/not/exist.txt", "assistants")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open upload file")
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL+"/", testKey, time.Second)

	_, err := c.ListFiles(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/files", (*captured)[0].path)
}
