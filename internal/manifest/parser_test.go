package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestParse(t *testing.T) {
	m, err := Parse(testPath("valid.yaml"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.Name != "myext" {
		t.Errorf("Name = %q, want %q", m.Name, "myext")
	}
	if m.Author != "plugfy" {
		t.Errorf("Author = %q, want %q", m.Author, "plugfy")
	}
	if len(m.Tags) != 2 || m.Tags[0] != "sample" || m.Tags[1] != "demo" {
		t.Errorf("Tags = %v, want [sample demo]", m.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse(testPath("does-not-exist.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse(testPath("malformed.yaml")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		m, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if m != nil {
			t.Errorf("Load = %+v, want nil", m)
		}
	})

	t.Run("present manifest", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte("name: tools\ndescription: Handy tools\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if m == nil || m.Description != "Handy tools" {
			t.Errorf("Load = %+v, want description %q", m, "Handy tools")
		}
	})
}
