// Package tools holds the static tool catalog and the executor that
// routes validated tool calls to backend operations. The catalog is the
// single source of truth: the same table serves tools/list and drives
// argument validation and dispatch for tools/call.
package tools

import (
	"context"

	"vectormcp/internal/backend"
	"vectormcp/internal/mcp"
)

// Handler maps validated arguments to one backend call and returns the
// backend's raw response body.
type Handler func(ctx context.Context, c *backend.Client, args map[string]any) ([]byte, error)

// Tool couples a descriptor with its handler so listing and invocation
// can never drift apart.
type Tool struct {
	mcp.ToolDescriptor
	Run Handler
}

var (
	registry = buildRegistry()
	byName   = indexRegistry(registry)
)

// Registry returns the full catalog in its fixed order.
func Registry() []Tool {
	return registry
}

// Descriptors returns the catalog as served by tools/list.
func Descriptors() []mcp.ToolDescriptor {
	out := make([]mcp.ToolDescriptor, len(registry))
	for i, t := range registry {
		out[i] = t.ToolDescriptor
	}
	return out
}

// Lookup resolves a tool by name.
func Lookup(name string) (Tool, bool) {
	t, ok := byName[name]
	return t, ok
}

func indexRegistry(tools []Tool) map[string]Tool {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name] = t
	}
	return m
}

// Schema literal helpers. The subset in use is objects of typed,
// optionally enumerated scalar properties, plus string arrays.

func strProp(desc string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: "string", Description: desc}
}

func intProp(desc string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: "integer", Description: desc}
}

func enumProp(desc string, values ...string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: "string", Description: desc, Enum: values}
}

func objProp(desc string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: "object", Description: desc}
}

func strArrayProp(desc string) mcp.SchemaProperty {
	return mcp.SchemaProperty{
		Type:        "array",
		Description: desc,
		Items:       &mcp.SchemaProperty{Type: "string"},
	}
}

func objSchema(props map[string]mcp.SchemaProperty, required ...string) mcp.InputSchema {
	return mcp.InputSchema{Type: "object", Properties: props, Required: required}
}

// listProps returns the shared paging properties of list tools. Bounds
// are not enforced locally; out-of-range values are the backend's call.
func listProps(extra map[string]mcp.SchemaProperty) map[string]mcp.SchemaProperty {
	props := map[string]mcp.SchemaProperty{
		"limit": intProp("Maximum number of items to return (backend default applies when absent)"),
		"order": enumProp("Sort order by creation time", "asc", "desc"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func buildRegistry() []Tool {
	return []Tool{
		// Vector stores
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_create",
				Description: "Create a new vector store",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"name":               strProp("Name of the vector store"),
					"expires_after_days": intProp("Days of inactivity before the store expires"),
					"metadata":           objProp("Key/value metadata to attach to the store"),
				}, "name"),
			},
			Run: runVectorStoreCreate,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_list",
				Description: "List vector stores",
				InputSchema: objSchema(listProps(nil)),
			},
			Run: runVectorStoreList,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_get",
				Description: "Retrieve a vector store by id",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
				}, "vector_store_id"),
			},
			Run: runVectorStoreGet,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_modify",
				Description: "Modify a vector store's name, expiration policy or metadata",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id":    strProp("ID of the vector store"),
					"name":               strProp("New name for the vector store"),
					"expires_after_days": intProp("Days of inactivity before the store expires"),
					"metadata":           objProp("Replacement key/value metadata"),
				}, "vector_store_id"),
			},
			Run: runVectorStoreModify,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_delete",
				Description: "Delete a vector store",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
				}, "vector_store_id"),
			},
			Run: runVectorStoreDelete,
		},

		// Vector-store files
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_create",
				Description: "Attach an uploaded file to a vector store",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"file_id":         strProp("ID of the uploaded file to attach"),
					"attributes":      objProp("Attributes to set on the vector store file"),
				}, "vector_store_id", "file_id"),
			},
			Run: runVectorStoreFileCreate,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_list",
				Description: "List files attached to a vector store",
				InputSchema: objSchema(listProps(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"filter":          enumProp("Filter by file status", "in_progress", "completed", "failed", "cancelled"),
				}), "vector_store_id"),
			},
			Run: runVectorStoreFileList,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_get",
				Description: "Retrieve a single vector store file",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"file_id":         strProp("ID of the file within the store"),
				}, "vector_store_id", "file_id"),
			},
			Run: runVectorStoreFileGet,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_update",
				Description: "Update the attributes of a vector store file",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"file_id":         strProp("ID of the file within the store"),
					"attributes":      objProp("Replacement attributes for the file"),
				}, "vector_store_id", "file_id", "attributes"),
			},
			Run: runVectorStoreFileUpdate,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_delete",
				Description: "Detach a file from a vector store",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"file_id":         strProp("ID of the file within the store"),
				}, "vector_store_id", "file_id"),
			},
			Run: runVectorStoreFileDelete,
		},

		// File batches
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_batch_create",
				Description: "Attach multiple uploaded files to a vector store as one batch",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"file_ids":        strArrayProp("IDs of the uploaded files to attach"),
				}, "vector_store_id", "file_ids"),
			},
			Run: runFileBatchCreate,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_batch_get",
				Description: "Retrieve a file batch",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"batch_id":        strProp("ID of the file batch"),
				}, "vector_store_id", "batch_id"),
			},
			Run: runFileBatchGet,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_batch_cancel",
				Description: "Cancel an in-progress file batch",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"batch_id":        strProp("ID of the file batch"),
				}, "vector_store_id", "batch_id"),
			},
			Run: runFileBatchCancel,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "vector_store_file_batch_list_files",
				Description: "List the files in a file batch",
				InputSchema: objSchema(listProps(map[string]mcp.SchemaProperty{
					"vector_store_id": strProp("ID of the vector store"),
					"batch_id":        strProp("ID of the file batch"),
					"filter":          enumProp("Filter by file status", "in_progress", "completed", "failed", "cancelled"),
				}), "vector_store_id", "batch_id"),
			},
			Run: runFileBatchListFiles,
		},

		// Files
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "file_upload",
				Description: "Upload a local file to the backend for later attachment",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"path":    strProp("Local filesystem path of the file to upload"),
					"purpose": enumProp("Purpose of the upload", "assistants", "batch", "fine-tune", "vision", "user_data"),
				}, "path"),
			},
			Run: runFileUpload,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "file_list",
				Description: "List uploaded files",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"purpose": strProp("Only return files with this purpose"),
				}),
			},
			Run: runFileList,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "file_get",
				Description: "Retrieve an uploaded file's metadata",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"file_id": strProp("ID of the file"),
				}, "file_id"),
			},
			Run: runFileGet,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "file_delete",
				Description: "Delete an uploaded file",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"file_id": strProp("ID of the file"),
				}, "file_id"),
			},
			Run: runFileDelete,
		},
		{
			ToolDescriptor: mcp.ToolDescriptor{
				Name:        "file_content",
				Description: "Download an uploaded file's raw content",
				InputSchema: objSchema(map[string]mcp.SchemaProperty{
					"file_id": strProp("ID of the file"),
				}, "file_id"),
			},
			Run: runFileContent,
		},
	}
}
