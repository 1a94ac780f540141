package contactos

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{ConfigTemplate, ContactsTemplate} {
		data, err := fs.ReadFile(Templates, name)
		if err != nil {
			t.Fatalf("reading embedded %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("embedded %s is empty", name)
		}
	}
}

func TestEmbeddedConfigTemplateNamesEveryMessenger(t *testing.T) {
	data, err := fs.ReadFile(Templates, ConfigTemplate)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"whatsapp", "sms", "smsto", "sqlite", "yaml"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config template should mention %q", want)
		}
	}
}

func TestOverlayFS_EmbeddedOnly(t *testing.T) {
	// Given: an embedded FS with a file and a local dir without it
	embedded := fstest.MapFS{
		"contacts.yaml": &fstest.MapFile{Data: []byte("embedded book")},
	}
	localDir := t.TempDir() // empty

	// When: opening the file via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "contacts.yaml")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: embedded content is returned
	if string(data) != "embedded book" {
		t.Errorf("got %q, want %q", string(data), "embedded book")
	}
}

func TestOverlayFS_LocalOverride(t *testing.T) {
	// Given: both local and embedded have the same file
	embedded := fstest.MapFS{
		"contacts.yaml": &fstest.MapFile{Data: []byte("embedded book")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "contacts.yaml"), []byte("local book"), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: opening the file via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "contacts.yaml")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: local file takes precedence
	if string(data) != "local book" {
		t.Errorf("got %q, want %q", string(data), "local book")
	}
}

func TestOverlayFS_Mixed(t *testing.T) {
	// Given: local has one file, embedded has another
	embedded := fstest.MapFS{
		"config.yaml":   &fstest.MapFile{Data: []byte("embedded-config")},
		"contacts.yaml": &fstest.MapFile{Data: []byte("embedded-contacts")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "config.yaml"), []byte("local-config"), 0o644); err != nil {
		t.Fatal(err)
	}

	ofs := OverlayFS(localDir, embedded)

	// When/Then: config.yaml comes from disk, contacts.yaml from the embedded FS
	cfgData, err := fs.ReadFile(ofs, "config.yaml")
	if err != nil {
		t.Fatalf("ReadFile(config.yaml) error = %v", err)
	}
	if string(cfgData) != "local-config" {
		t.Errorf("config.yaml = %q, want %q", string(cfgData), "local-config")
	}

	bookData, err := fs.ReadFile(ofs, "contacts.yaml")
	if err != nil {
		t.Fatalf("ReadFile(contacts.yaml) error = %v", err)
	}
	if string(bookData) != "embedded-contacts" {
		t.Errorf("contacts.yaml = %q, want %q", string(bookData), "embedded-contacts")
	}
}

func TestOverlayFS_NotFound(t *testing.T) {
	// Given: neither local nor embedded has the file
	embedded := fstest.MapFS{}
	localDir := t.TempDir()

	ofs := OverlayFS(localDir, embedded)

	// When/Then: Open returns an error
	_, err := fs.ReadFile(ofs, "missing.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOverlayFS_RejectsInvalidPath(t *testing.T) {
	// Given: an overlay FS
	ofs := OverlayFS(t.TempDir(), fstest.MapFS{})

	// When/Then: invalid paths are rejected per fs.ValidPath contract
	for _, name := range []string{"../escape", "/absolute", "bad\\slash"} {
		_, err := ofs.Open(name)
		if err == nil {
			t.Errorf("Open(%q) should return error", name)
		}
	}
}
