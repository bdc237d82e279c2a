package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalk_IncludeExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt")
	writeFile(t, dir, "b.md")
	writeFile(t, dir, "c.go")
	writeFile(t, dir, filepath.Join("sub", "d.txt"))
	writeFile(t, dir, filepath.Join(".git", "e.txt"))

	w := NewWalker([]string{"**/*.txt", "**/*.md"}, []string{"**/.git/**"})
	files, err := w.Walk(dir)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		got[filepath.ToSlash(rel)] = true
	}

	for _, want := range []string{"a.txt", "b.md", "sub/d.txt"} {
		if !got[want] {
			t.Errorf("expected %s in results, got %v", want, got)
		}
	}
	if got["c.go"] {
		t.Error("c.go should not match include patterns")
	}
	if got[".git/e.txt"] {
		t.Error(".git/e.txt should be excluded")
	}
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
}
