package picker

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactos/internal/contact"
)

// Presenter holds the full contact list and the subsequence currently
// shown for the search query.
type Presenter struct {
	full    []contact.Contact
	visible []contact.Contact
	query   string
	onTap   func(phone string) tea.Msg
}

// NewPresenter creates a Presenter showing all of full. onTap is invoked
// with a contact's phone number when its row is tapped.
func NewPresenter(full []contact.Contact, onTap func(phone string) tea.Msg) Presenter {
	full = append([]contact.Contact(nil), full...)
	return Presenter{
		full:    full,
		visible: contact.Filter(full, ""),
		onTap:   onTap,
	}
}

// SetQuery recomputes the visible contacts from scratch for q.
func (p Presenter) SetQuery(q string) Presenter {
	p.query = q
	p.visible = contact.Filter(p.full, q)
	return p
}

// RowTapped returns a command that hands c's phone number to the tap
// callback. The presenter itself is unchanged.
func (p Presenter) RowTapped(c contact.Contact) tea.Cmd {
	if p.onTap == nil {
		return nil
	}
	onTap := p.onTap
	return func() tea.Msg {
		return onTap(c.PhoneNumber)
	}
}

// Full returns the full contact list.
func (p Presenter) Full() []contact.Contact { return p.full }

// Visible returns the contacts matching the current query.
func (p Presenter) Visible() []contact.Contact { return p.visible }

// Query returns the current search query.
func (p Presenter) Query() string { return p.query }

// RowView is the rendered text of one list row.
type RowView struct {
	Title    string
	Subtitle string
}

// Placeholders for blank fields, which the address book may contain.
const (
	noName   = "(no name)"
	noNumber = "(no number)"
)

// Render builds the row for c.
func Render(c contact.Contact) RowView {
	rv := RowView{Title: c.Name, Subtitle: c.PhoneNumber}
	if rv.Title == "" {
		rv.Title = noName
	}
	if rv.Subtitle == "" {
		rv.Subtitle = noNumber
	}
	return rv
}
