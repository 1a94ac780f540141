package addressbook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/contactos/internal/contact"
)

// Verify YAMLSource satisfies Source at compile time.
var _ Source = (*YAMLSource)(nil)

// yamlBook is the on-disk layout of a YAML address book.
type yamlBook struct {
	Contacts []contact.Contact `yaml:"contacts"`
}

// YAMLSource reads contacts from a YAML file of the form
//
//	contacts:
//	  - name: Alice
//	    phone: "+55 11 5555-0101"
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a YAMLSource for the file at path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Name returns "yaml".
func (s *YAMLSource) Name() string { return "yaml" }

// Load parses the file and returns its contacts stably sorted by name,
// ignoring ASCII case the way the sqlite loader's NOCASE collation does.
// Unknown fields are rejected. An empty file yields no contacts.
func (s *YAMLSource) Load(ctx context.Context) ([]contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &SourceError{Source: s.path, Err: err}
	}

	var book yamlBook
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&book); err != nil && !errors.Is(err, io.EOF) {
		return nil, &SourceError{Source: s.path, Err: err}
	}

	contacts := append([]contact.Contact{}, book.Contacts...)
	sort.SliceStable(contacts, func(i, j int) bool {
		return nameLess(contacts[i].Name, contacts[j].Name)
	})
	return contacts, nil
}

// nameLess orders names with ASCII letters folded to lower case, falling
// back to byte order for names that fold equal.
func nameLess(a, b string) bool {
	la, lb := strings.Map(asciiLower, a), strings.Map(asciiLower, b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func asciiLower(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
