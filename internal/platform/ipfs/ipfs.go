// Package ipfs provides content-addressed file storage for medical documents.
// It defines the FileStore interface, a Pinata pinning-service client, and an
// in-memory implementation suitable for testing and development.
package ipfs

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound     = errors.New("content not found")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// PinResult describes a successfully pinned file.
type PinResult struct {
	CID  string `json:"cid"`
	Size int64  `json:"size"`
}

// FileStore is the contract for content-addressed storage backends.
type FileStore interface {
	// Pin stores the content and returns its content identifier.
	Pin(ctx context.Context, fileName string, content io.Reader) (*PinResult, error)
	// PinJSON stores an arbitrary JSON-serializable value.
	PinJSON(ctx context.Context, name string, v interface{}) (*PinResult, error)
	// Fetch streams the content for a CID.
	Fetch(ctx context.Context, cid string) (io.ReadCloser, error)
	// Unpin removes the content for a CID.
	Unpin(ctx context.Context, cid string) error
}
