package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderOnlyMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.txt", "bravo")
	writeFile(t, dir, "notes.md", "ignored")
	writeFile(t, dir, "sub/c.txt", "charlie")

	docs, err := NewLoader(dir, nil, nil).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].ID != "a.txt" || docs[1].ID != "b.txt" || docs[2].ID != "c.txt" {
		t.Errorf("unexpected document order: %s, %s, %s", docs[0].ID, docs[1].ID, docs[2].ID)
	}
	if docs[0].Text != "alpha" {
		t.Errorf("unexpected content: %q", docs[0].Text)
	}
	if docs[0].ByteSize != 5 {
		t.Errorf("unexpected byte size: %d", docs[0].ByteSize)
	}
}

func TestLoaderExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "keep")
	writeFile(t, dir, "drafts/skip.txt", "skip")

	docs, err := NewLoader(dir, nil, []string{"drafts/**"}).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != 1 || docs[0].ID != "keep.txt" {
		t.Fatalf("expected only keep.txt, got %d documents", len(docs))
	}
}

func TestLoaderMissingFolder(t *testing.T) {
	if _, err := NewLoader("/nonexistent/folder", nil, nil).Load(); err == nil {
		t.Error("expected error for missing folder")
	}
}
