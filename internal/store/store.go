// Package store persists uploaded PDFs and their extraction documents on
// disk, mirroring the uploads/ and json/ folder layout the review UI
// expects. Directories are explicit configuration; the store owns no global
// state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/pkg/types"
)

// ErrNotFound means no stored document has the requested ID.
var ErrNotFound = errors.New("document not found")

// Store is an on-disk document store with an LRU cache of parsed document
// texts. Safe for concurrent use.
type Store struct {
	uploadsDir string
	jsonDir    string

	mu    sync.Mutex
	texts *lru.Cache[string, *document.Text]
}

// New creates the store, creating both directories if needed.
func New(uploadsDir, jsonDir string, cacheSize int) (*Store, error) {
	for _, dir := range []string{uploadsDir, jsonDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if cacheSize <= 0 {
		cacheSize = 64
	}
	texts, err := lru.New[string, *document.Text](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{uploadsDir: uploadsDir, jsonDir: jsonDir, texts: texts}, nil
}

// SaveUpload writes an uploaded PDF and returns the document ID derived from
// the sanitized filename. Name collisions get a short unique suffix instead
// of overwriting an existing document.
func (s *Store) SaveUpload(filename string, data []byte) (string, error) {
	id := SanitizeName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if id == "" {
		id = "document"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsLocked(id) {
		id = id + "-" + uuid.NewString()[:8]
	}
	if err := os.WriteFile(s.pdfPath(id), data, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return id, nil
}

// SaveExtraction persists the extraction document for an ID.
func (s *Store) SaveExtraction(id string, doc *types.ExtractionDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding extraction: %w", err)
	}
	if err := os.WriteFile(s.jsonPath(id), data, 0o644); err != nil {
		return fmt.Errorf("saving extraction: %w", err)
	}
	s.mu.Lock()
	s.texts.Remove(id)
	s.mu.Unlock()
	return nil
}

// RemoveUpload deletes the stored PDF for an ID, keeping the extraction.
func (s *Store) RemoveUpload(id string) error {
	err := os.Remove(s.pdfPath(SanitizeName(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List returns the stored extraction documents, newest first.
func (s *Store) List() ([]types.DocumentInfo, error) {
	entries, err := os.ReadDir(s.jsonDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.jsonDir, err)
	}

	infos := make([]types.DocumentInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		info := types.DocumentInfo{ID: id, Name: e.Name()}
		if fi, err := e.Info(); err == nil {
			info.SizeBytes = fi.Size()
			info.ModifiedAt = fi.ModTime().UTC().Format(time.RFC3339)
		}
		if _, err := os.Stat(s.pdfPath(id)); err == nil {
			info.HasPDF = true
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ModifiedAt != infos[j].ModifiedAt {
			return infos[i].ModifiedAt > infos[j].ModifiedAt
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

// GetExtractionRaw returns the stored extraction JSON bytes.
func (s *Store) GetExtractionRaw(id string) ([]byte, error) {
	data, err := os.ReadFile(s.jsonPath(SanitizeName(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading extraction %s: %w", id, err)
	}
	return data, nil
}

// GetExtraction returns the parsed extraction document.
func (s *Store) GetExtraction(id string) (*types.ExtractionDocument, error) {
	data, err := s.GetExtractionRaw(id)
	if err != nil {
		return nil, err
	}
	var doc types.ExtractionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing extraction %s: %w", id, err)
	}
	return &doc, nil
}

// DocumentText returns the parsed document text model for an ID, cached.
// Page breaks are derived from form feeds in the stored text.
func (s *Store) DocumentText(id string) (*document.Text, error) {
	s.mu.Lock()
	if doc, ok := s.texts.Get(id); ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	ext, err := s.GetExtraction(id)
	if err != nil {
		return nil, err
	}
	doc, err := document.New(ext.Text, PageBreaks(ext.Text))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.texts.Add(id, doc)
	s.mu.Unlock()
	return doc, nil
}

// PageBreaks derives page start offsets from form-feed separators, the
// convention PDF text extractors use between pages.
func PageBreaks(text string) []int {
	breaks := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\f' && i+1 < len(text) {
			breaks = append(breaks, i+1)
		}
	}
	return breaks
}

// SanitizeName strips path separators and anything outside a conservative
// charset, the way werkzeug's secure_filename does for the original app.
func SanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func (s *Store) pdfPath(id string) string {
	return filepath.Join(s.uploadsDir, id+".pdf")
}

func (s *Store) jsonPath(id string) string {
	return filepath.Join(s.jsonDir, id+".json")
}

func (s *Store) existsLocked(id string) bool {
	if _, err := os.Stat(s.jsonPath(id)); err == nil {
		return true
	}
	if _, err := os.Stat(s.pdfPath(id)); err == nil {
		return true
	}
	return false
}
