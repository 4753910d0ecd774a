package ipfs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is a thread-safe, in-memory FileStore for testing and
// development. CIDs are derived from the content hash so identical content
// yields identical identifiers, as with a real content-addressed store.
type MemoryStore struct {
	mu      sync.RWMutex
	content map[string][]byte
	maxSize int64
}

// NewMemoryStore returns a MemoryStore limited to maxSize bytes per file.
// A non-positive maxSize disables the limit.
func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		content: make(map[string][]byte),
		maxSize: maxSize,
	}
}

func (s *MemoryStore) Pin(_ context.Context, _ string, content io.Reader) (*PinResult, error) {
	var r io.Reader = content
	if s.maxSize > 0 {
		r = io.LimitReader(content, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("memory store: read content: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	cid := contentID(data)
	s.mu.Lock()
	s.content[cid] = data
	s.mu.Unlock()

	return &PinResult{CID: cid, Size: int64(len(data))}, nil
}

func (s *MemoryStore) PinJSON(ctx context.Context, name string, v interface{}) (*PinResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("memory store: marshal: %w", err)
	}
	return s.Pin(ctx, name, bytes.NewReader(data))
}

func (s *MemoryStore) Fetch(_ context.Context, cid string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.content[cid]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Unpin(_ context.Context, cid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[cid]; !ok {
		return ErrNotFound
	}
	delete(s.content, cid)
	return nil
}

func contentID(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("baf%x", h[:20])
}
