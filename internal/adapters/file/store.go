package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/blockflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultBasePath is used when New is given an empty path.
var DefaultBasePath = filepath.Join(".blockflow", "workflows")

// Store implements ports.WorkflowStore using the local filesystem.
// It stores one document per file in a configured directory.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects JSON (default) or YAML files.
func WithFormat(f Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultBasePath.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ext() string {
	if s.Format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Store) path(workflowID string) string {
	return filepath.Join(s.BasePath, workflowID+s.ext())
}

func validID(workflowID string) error {
	if workflowID == "" {
		return fmt.Errorf("workflowID cannot be empty")
	}
	if strings.ContainsAny(workflowID, `/\`) || workflowID == "." || workflowID == ".." {
		return fmt.Errorf("workflowID %q is not a valid file name", workflowID)
	}
	return nil
}

func (s *Store) marshal(doc *domain.Document) ([]byte, error) {
	if s.Format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Store) unmarshal(data []byte, doc *domain.Document) error {
	if s.Format == FormatYAML {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}

// Save persists the document atomically: it writes a temporary file in the
// same directory, fsyncs it, and renames it over the destination.
func (s *Store) Save(ctx context.Context, workflowID string, doc *domain.Document) error {
	if err := validID(workflowID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure workflow directory: %w", err)
	}

	data, err := s.marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+workflowID+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(workflowID)
	// os.Rename does not replace an existing file on Windows.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing workflow file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to workflow file: %w", err)
	}
	return nil
}

// Load reads the document for workflowID.
func (s *Store) Load(ctx context.Context, workflowID string) (*domain.Document, error) {
	if err := validID(workflowID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var doc domain.Document
	if err := s.unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &doc, nil
}

// Delete removes the workflow file.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	if err := validID(workflowID); err != nil {
		return err
	}

	err := os.Remove(s.path(workflowID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workflow file: %w", err)
	}
	return nil
}

// List returns the IDs of all workflow files in the configured format.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext()))
	}
	sort.Strings(ids)
	return ids, nil
}
