// Package codec implements the DocumentCodec adapters (spec.md's
// expanded C12): PDF text extraction, DOCX memo/summary rendering, and
// XLSX compliance-report rendering, grounded on the teacher repo's
// pkg/rag/native_parsers.go (pdf.NewReader page-by-page extraction,
// docx.ReadDocxFile, excelize.OpenFile) generalized from a RAG
// ingestion parser to the tool layer's TextExtractor and
// DocumentRenderer collaborators.
package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobFetcher retrieves a previously stored blob's raw bytes by URI.
// Paired with tool.BlobStore's Put, this is the read half of the
// abstract BlobStore collaborator spec.md names.
type BlobFetcher interface {
	Get(ctx context.Context, uri string) ([]byte, error)
}

// FileBlobStore is a local-filesystem-backed BlobStore/BlobFetcher —
// the dev/test implementation of the abstract collaborator; a
// production deployment would swap in an object-storage-backed one
// without the rest of the runtime noticing (spec.md's "abstract
// collaborator" design note).
type FileBlobStore struct {
	BaseDir string
}

// NewFileBlobStore creates a FileBlobStore rooted at dir, creating it
// if necessary.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("codec: create blob dir: %w", err)
	}
	return &FileBlobStore{BaseDir: dir}, nil
}

const filePrefix = "file://"

// Put writes content under key and returns a file:// URI.
func (b *FileBlobStore) Put(ctx context.Context, key string, content []byte) (string, error) {
	path := filepath.Join(b.BaseDir, key)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("codec: write blob %s: %w", key, err)
	}
	return filePrefix + path, nil
}

// Get reads the blob a file:// URI points to.
func (b *FileBlobStore) Get(ctx context.Context, uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, filePrefix)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codec: read blob %s: %w", uri, err)
	}
	return content, nil
}
