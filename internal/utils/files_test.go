package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.tsv")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("content = %q, want %q", b, "two")
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFindRunRootWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "run.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	nested := filepath.Join(root, "plot_data", "Glc")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindRunRoot(nested)
	if err != nil {
		t.Fatalf("FindRunRoot: %v", err)
	}
	if got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		bad  rune
	}{
		{"run_2024-01", true, 0},
		{"my run", true, 0},
		{"bad.name", false, '.'},
		{"a/b", false, '/'},
		{"x|y", false, '|'},
	}
	for _, tt := range tests {
		bad, ok := SafeName(tt.name)
		if ok != tt.ok || bad != tt.bad {
			t.Errorf("SafeName(%q) = (%q, %v), want (%q, %v)", tt.name, bad, ok, tt.bad, tt.ok)
		}
	}
}

func TestFileStem(t *testing.T) {
	if got := FileStem("Glu 6-P/1.2"); got != "Glu-6-P-1-2" {
		t.Fatalf("FileStem = %q", got)
	}
}
