// Package picker implements the contact picker TUI: a search field over
// the loaded address book whose rows hand the selected phone number off
// to a messaging application.
package picker

import (
	"context"

	"github.com/smileynet/contactos/internal/access"
	"github.com/smileynet/contactos/internal/contact"
)

// Mode represents the current picker view mode.
type Mode int

const (
	ModeLoading    Mode = iota // Checking access or loading contacts.
	ModePermission             // Asking the user for read-contacts access.
	ModeBrowse                 // Search field and contact list.
)

// --- Consumer-side interfaces ---

// Loader fetches the full address book.
type Loader interface {
	Load(ctx context.Context) ([]contact.Contact, error)
}

// Handoff opens a messaging app addressed to a phone number.
type Handoff interface {
	Send(ctx context.Context, phone string) error
}

// Authorizer decides and remembers read-contacts access.
type Authorizer interface {
	Check(permission string) (access.Outcome, bool, error)
	Record(permission string, outcome access.Outcome) error
}

// --- tea.Msg types ---

// AccessMsg carries an access decision. Decided is false when the user
// must be asked.
type AccessMsg struct {
	Outcome access.Outcome
	Decided bool
	Err     error
}

// ContactsLoadedMsg carries the result of Loader.Load.
type ContactsLoadedMsg struct {
	Contacts []contact.Contact
	Err      error
}

// HandoffResultMsg carries the result of a row tap.
type HandoffResultMsg struct {
	Phone string
	Err   error
}

// toastExpiredMsg clears the toast shown with the same sequence number.
type toastExpiredMsg struct {
	seq int
}
