package fileutils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestWriteFileAtomicSameDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.md")

	if err := WriteFileAtomicSameDir(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello\n" {
		t.Fatalf("content=%q, want %q", string(b), "hello\n")
	}

	// Overwrite in place and leave no temp files behind.
	if err := WriteFileAtomicSameDir(path, []byte("again"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, _ = os.ReadFile(path)
	if string(b) != "again" {
		t.Fatalf("content=%q, want again", string(b))
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want 1 (temp file leaked?)", len(entries))
	}
}

func TestCheckNotExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	if err := CheckNotExists(path); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := CheckNotExists(path); err == nil {
		t.Fatalf("expected error for existing file")
	}
}

func TestRemoveMatching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "keep.json", "notes.MD"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	n, err := RemoveMatching(dir, "*.md")
	if err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed=%d, want 2", n)
	}

	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "keep.json,notes.MD,sub.md" {
		t.Fatalf("remaining=%v", names)
	}

	if n, err := RemoveMatching(filepath.Join(dir, "missing"), "*.md"); err != nil || n != 0 {
		t.Fatalf("missing dir: n=%d err=%v, want 0/nil", n, err)
	}
}

func TestWriteJSONLinesAtomic(t *testing.T) {
	t.Parallel()

	type row struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	path := filepath.Join(t.TempDir(), "index.jsonl")
	if err := WriteJSONLinesAtomic(path, []row{{"a", 1}, {"b", 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(path)
	want := "{\"name\":\"a\",\"n\":1}\n{\"name\":\"b\",\"n\":2}\n"
	if string(b) != want {
		t.Fatalf("content=%q, want %q", string(b), want)
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Parallel()

	compact, err := MarshalJSON(map[string]int{"a": 1}, false)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(compact) != "{\"a\":1}\n" {
		t.Fatalf("compact=%q", compact)
	}
	pretty, _ := MarshalJSON(map[string]int{"a": 1}, true)
	if string(pretty) != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("pretty=%q", pretty)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  short  ", 10); got != "short" {
		t.Fatalf("Truncate=%q, want short", got)
	}
	if got := Truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("Truncate=%q, want abc…", got)
	}
	// "é" is two bytes; cutting inside it backs up to the rune start.
	if got := Truncate("aé", 2); got != "a…" {
		t.Fatalf("Truncate=%q, want a…", got)
	}
}
