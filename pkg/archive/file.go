package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// FileStore is a file-based document store for CLI applications.
// Documents are stored as JSON files named after their id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based document store.
// If baseDir is empty, defaults to ~/.config/algotrace/traces/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "algotrace", "traces")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, doc *trace.Document) (string, error) {
	sum, data, err := prepare(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.docPath(sum.ID), data, 0600); err != nil {
		return "", fmt.Errorf("write trace file: %w", err)
	}
	return sum.ID, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*trace.Document, error) {
	if err := errors.ValidateTraceID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	return decode(id, data)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateTraceID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.docPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove trace file: %w", err)
	}
	return nil
}

// List reads the header of every stored document. Unreadable files are
// skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read trace dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var doc trace.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		out = append(out, summarize(&doc))
	}

	sortNewestFirst(out)
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for trace files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
