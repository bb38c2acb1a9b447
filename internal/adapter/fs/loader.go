package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"rag/internal/domain"
)

// Loader reads plain-text documents from a folder. Each matching file becomes
// one document; the filename is kept as the provenance identifier.
type Loader struct {
	root     string
	includes []string
	excludes []string
}

func NewLoader(root string, includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.txt"}
	}
	return &Loader{
		root:     root,
		includes: includes,
		excludes: excludes,
	}
}

// Load walks the folder and returns matching documents in path order, so an
// ingestion run is deterministic for a given document set.
func (l *Loader) Load() ([]domain.Document, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("documents folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents folder is not a directory: %s", l.root)
	}

	var docs []domain.Document
	err = filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if !l.shouldInclude(relPath) || l.shouldExclude(relPath) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		docs = append(docs, domain.Document{
			ID:       filepath.Base(path),
			Path:     path,
			Text:     string(data),
			ByteSize: len(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (l *Loader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Loader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
