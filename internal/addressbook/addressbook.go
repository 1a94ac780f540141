// Package addressbook loads contacts from a local contact store.
// Sources are queried once per launch and return rows sorted by display
// name ascending; nothing is skipped or deduplicated.
package addressbook

import (
	"context"
	"fmt"

	"github.com/smileynet/contactos/internal/contact"
)

// Source is a queryable contact store.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]contact.Contact, error)
}

// SourceError wraps a failure opening, querying, or parsing a source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("addressbook: %s: %s", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
