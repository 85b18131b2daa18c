// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/polit/internal/domain/entities"
)

// QueryClient relays one chat utterance to the query endpoint.
type QueryClient interface {
	// Ask posts {query} and returns the decoded reply.
	// An error means no usable body arrived (transport failure or undecodable body).
	Ask(ctx context.Context, query string) (*entities.QueryReply, error)
}

// ProgressFunc receives byte counts as the transport consumes the request body.
type ProgressFunc func(sent, total int64)

// Uploader transmits a candidate to the upload endpoint.
type Uploader interface {
	// Upload streams the candidate as a multipart form and decodes the success body.
	// Failures are reported as typed errors so callers can tell status, format and
	// network problems apart.
	Upload(ctx context.Context, candidate entities.UploadCandidate, progress ProgressFunc) (*entities.UploadReply, error)
}

// FileLoader turns a path (dropped or picked) into a SelectedFile.
type FileLoader interface {
	Load(ctx context.Context, path string) (*entities.SelectedFile, error)
}

// DocumentInspector extracts informational facts from a PDF.
type DocumentInspector interface {
	// PageCount returns the number of pages, or an error if the document is unreadable.
	PageCount(ctx context.Context, path string) (int, error)
}

// IDGenerator produces unique, generation-ordered message IDs.
type IDGenerator interface {
	NewID() string
}

// UploadObserver is notified after every upload state or progress change.
type UploadObserver interface {
	UploadChanged(snapshot entities.UploadSnapshot)
}

// ChatObserver is notified after every chat log or busy change.
type ChatObserver interface {
	ChatChanged(snapshot entities.ChatSnapshot)
}

// NavigationObserver is notified when the view or menu state changes.
type NavigationObserver interface {
	NavigationChanged(view entities.View, menuOpen bool)
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
