// Package access models the read-contacts authorization: a two-outcome
// decision that is either fixed by configuration, remembered from an
// earlier grant, or asked of the user at startup.
package access

import (
	"errors"
	"fmt"
	"time"
)

// ReadContacts is the permission consulted before loading the address book.
const ReadContacts = "read_contacts"

// Outcome is the result of an authorization request.
type Outcome string

const (
	Granted Outcome = "granted"
	Denied  Outcome = "denied"
)

// Mode selects how the gate decides.
type Mode string

const (
	ModeAsk     Mode = "ask"     // Use a stored grant, otherwise ask the user.
	ModeGranted Mode = "granted" // Always granted; nothing is stored.
	ModeDenied  Mode = "denied"  // Always denied; nothing is stored.
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAsk, ModeGranted, ModeDenied:
		return Mode(s), nil
	case "":
		return ModeAsk, nil
	default:
		return "", fmt.Errorf("access: mode must be \"ask\", \"granted\" or \"denied\", got %q", s)
	}
}

// Grant is a remembered authorization decision.
type Grant struct {
	Permission string    `json:"permission"`
	Outcome    Outcome   `json:"outcome"`
	DecidedAt  time.Time `json:"decided_at"`
}

// GrantStore persists grants by permission name.
type GrantStore interface {
	Save(g Grant) error
	Load(permission string) (Grant, bool, error)
	Remove(permission string) error
}

// Gate decides whether a permission is granted.
type Gate struct {
	mode  Mode
	store GrantStore
	now   func() time.Time
}

// NewGate creates a Gate in the given mode backed by store.
func NewGate(mode Mode, store GrantStore) *Gate {
	return &Gate{mode: mode, store: store, now: time.Now}
}

// Mode returns the gate's mode.
func (g *Gate) Mode() Mode { return g.mode }

// Check returns the outcome for permission and whether it is decided.
// An undecided result means the caller must ask the user and Record the
// answer.
func (g *Gate) Check(permission string) (Outcome, bool, error) {
	switch g.mode {
	case ModeGranted:
		return Granted, true, nil
	case ModeDenied:
		return Denied, true, nil
	}

	grant, ok, err := g.store.Load(permission)
	if err != nil {
		return "", false, err
	}
	if ok && grant.Outcome == Granted {
		return Granted, true, nil
	}
	return "", false, nil
}

// Record remembers a user's answer. Only grants are stored; a denial
// applies to this launch and the user is asked again next time.
// Nothing is stored outside ModeAsk.
func (g *Gate) Record(permission string, outcome Outcome) error {
	if g.mode != ModeAsk || outcome != Granted {
		return nil
	}
	return g.store.Save(Grant{
		Permission: permission,
		Outcome:    outcome,
		DecidedAt:  g.now().UTC(),
	})
}

// Revoke forgets any stored grant for permission.
func (g *Gate) Revoke(permission string) error {
	return g.store.Remove(permission)
}

// ErrInvalidPermission indicates a permission name is empty or contains
// path traversal components.
var ErrInvalidPermission = errors.New("access: invalid permission name")
