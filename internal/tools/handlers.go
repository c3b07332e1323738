package tools

import (
	"context"

	"vectormcp/internal/backend"
)

// Argument accessors. Validation has already established shapes, so
// these only need to convert out of the generic JSON types.

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func mapArg(args map[string]any, key string) map[string]any {
	v, _ := args[key].(map[string]any)
	return v
}

func stringMapArg(args map[string]any, key string) map[string]string {
	raw, _ := args[key].(map[string]any)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, _ := args[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func listOpts(args map[string]any) backend.ListOptions {
	return backend.ListOptions{
		Limit:  intArg(args, "limit"),
		Order:  stringArg(args, "order"),
		Filter: stringArg(args, "filter"),
	}
}

func expiresAfterArg(args map[string]any) *backend.ExpiresAfter {
	days := intArg(args, "expires_after_days")
	if days <= 0 {
		return nil
	}
	return &backend.ExpiresAfter{Anchor: "last_active_at", Days: days}
}

// --- Vector stores ---

func runVectorStoreCreate(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.CreateVectorStore(ctx, backend.CreateVectorStoreRequest{
		Name:         stringArg(args, "name"),
		ExpiresAfter: expiresAfterArg(args),
		Metadata:     stringMapArg(args, "metadata"),
	})
}

func runVectorStoreList(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.ListVectorStores(ctx, listOpts(args))
}

func runVectorStoreGet(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.GetVectorStore(ctx, stringArg(args, "vector_store_id"))
}

func runVectorStoreModify(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	req := backend.ModifyVectorStoreRequest{
		ExpiresAfter: expiresAfterArg(args),
		Metadata:     stringMapArg(args, "metadata"),
	}
	if name := stringArg(args, "name"); name != "" {
		req.Name = &name
	}
	return c.ModifyVectorStore(ctx, stringArg(args, "vector_store_id"), req)
}

func runVectorStoreDelete(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.DeleteVectorStore(ctx, stringArg(args, "vector_store_id"))
}

// --- Vector-store files ---

func runVectorStoreFileCreate(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.CreateVectorStoreFile(ctx, stringArg(args, "vector_store_id"), backend.CreateVectorStoreFileRequest{
		FileID:     stringArg(args, "file_id"),
		Attributes: mapArg(args, "attributes"),
	})
}

func runVectorStoreFileList(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.ListVectorStoreFiles(ctx, stringArg(args, "vector_store_id"), listOpts(args))
}

func runVectorStoreFileGet(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.GetVectorStoreFile(ctx, stringArg(args, "vector_store_id"), stringArg(args, "file_id"))
}

func runVectorStoreFileUpdate(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.UpdateVectorStoreFile(ctx, stringArg(args, "vector_store_id"), stringArg(args, "file_id"),
		backend.UpdateVectorStoreFileRequest{Attributes: mapArg(args, "attributes")})
}

func runVectorStoreFileDelete(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.DeleteVectorStoreFile(ctx, stringArg(args, "vector_store_id"), stringArg(args, "file_id"))
}

// --- File batches ---

func runFileBatchCreate(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.CreateFileBatch(ctx, stringArg(args, "vector_store_id"), backend.CreateFileBatchRequest{
		FileIDs: stringSliceArg(args, "file_ids"),
	})
}

func runFileBatchGet(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.GetFileBatch(ctx, stringArg(args, "vector_store_id"), stringArg(args, "batch_id"))
}

func runFileBatchCancel(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.CancelFileBatch(ctx, stringArg(args, "vector_store_id"), stringArg(args, "batch_id"))
}

func runFileBatchListFiles(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.ListFileBatchFiles(ctx, stringArg(args, "vector_store_id"), stringArg(args, "batch_id"), listOpts(args))
}

// --- Files ---

func runFileUpload(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	purpose := stringArg(args, "purpose")
	if purpose == "" {
		purpose = "assistants"
	}
	return c.UploadFile(ctx, stringArg(args, "path"), purpose)
}

func runFileList(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.ListFiles(ctx, stringArg(args, "purpose"))
}

func runFileGet(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.GetFile(ctx, stringArg(args, "file_id"))
}

func runFileDelete(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.DeleteFile(ctx, stringArg(args, "file_id"))
}

func runFileContent(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error) {
	return c.GetFileContent(ctx, stringArg(args, "file_id"))
}
