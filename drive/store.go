// Package drive persists channel documents to a Google Drive folder tree.
//
// The pipeline talks to the ObjectStore interface; Store implements it
// against the Drive v3 API. One JSON document is kept per channel inside a
// channels/ container, with a _channel_index.json directory document at the
// storage root for dedup and existence checks.
package drive

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound indicates the named document or container does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt indicates a persisted document could not be decoded.
	ErrCorrupt = errors.New("document corrupt")
)

// StorageError wraps a failed storage operation.
type StorageError struct {
	Op   string // "find", "create", "update", "read", "list"
	Name string // document or container name, when known
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Document describes a stored document.
type Document struct {
	ID       string
	Name     string
	MimeType string
}

// Container describes a folder that can hold documents.
type Container struct {
	ID   string
	Name string
}

// ObjectStore is the document-store surface the pipeline consumes.
type ObjectStore interface {
	// FindDocument looks a document up by name inside a container.
	// A missing document is (nil, nil), not an error.
	FindDocument(ctx context.Context, name, containerID string) (*Document, error)
	// CreateDocument creates a document with the given content.
	CreateDocument(ctx context.Context, name, containerID string, content []byte) (*Document, error)
	// UpdateDocument replaces a document's content.
	UpdateDocument(ctx context.Context, id string, content []byte) (*Document, error)
	// ReadContent returns a document's raw content.
	ReadContent(ctx context.Context, id string) ([]byte, error)
	// ListContainers lists the folders visible at the store.
	ListContainers(ctx context.Context) ([]Container, error)
	// CreateContainer creates a folder under a parent.
	CreateContainer(ctx context.Context, name, parentID string) (*Container, error)
	// ListDocuments lists the documents inside a container.
	ListDocuments(ctx context.Context, containerID string) ([]Document, error)
}
