package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHookFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hooksB.lua", "hooksA.lua", "notes.txt", "hooksC.js"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	input := filepath.Join(dir, "doc.lit")

	got, err := HookFiles(input, []string{".lua"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "hooksA.lua"), filepath.Join(dir, "hooksB.lua")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHookFilesNoExtensionFilterMatchesAny(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hooks.py"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "doc.lit")

	got, err := HookFiles(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %v", got)
	}
}
