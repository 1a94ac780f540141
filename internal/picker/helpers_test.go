package picker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactos/internal/access"
	"github.com/smileynet/contactos/internal/contact"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, flattening nested batch commands. It
// returns all non-nil resulting messages. Spinner ticks are skipped to
// avoid recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, c := range msg {
			msgs = append(msgs, execBatch(t, c)...)
		}
		return msgs
	default:
		return []tea.Msg{msg}
	}
}

// findMsg returns the first message of type T in msgs.
func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var sampleContacts = []contact.Contact{
	{Name: "Alice", PhoneNumber: "+1 555 0100"},
	{Name: "Bob", PhoneNumber: "555-0101"},
	{Name: "Carla", PhoneNumber: "555 0102"},
	{Name: "Marcelo", PhoneNumber: "+55 11 99999-0000"},
}

type fakeLoader struct {
	contacts []contact.Contact
	err      error
}

func (f fakeLoader) Load(context.Context) ([]contact.Contact, error) {
	return f.contacts, f.err
}

// fakeHandoff records the phone numbers it is asked to open.
type fakeHandoff struct {
	mu     sync.Mutex
	phones []string
	err    error
}

func (f *fakeHandoff) Send(_ context.Context, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phones = append(f.phones, phone)
	return f.err
}

func (f *fakeHandoff) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.phones...)
}

// fakeAuth answers Check from fixed values and records decisions.
type fakeAuth struct {
	mu       sync.Mutex
	outcome  access.Outcome
	decided  bool
	err      error
	recorded []access.Outcome
}

func (f *fakeAuth) Check(string) (access.Outcome, bool, error) {
	return f.outcome, f.decided, f.err
}

func (f *fakeAuth) Record(_ string, outcome access.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, outcome)
	return nil
}

// newSizedModel returns a model that has received a window size and uses
// a short toast lifetime.
func newSizedModel(w, h int, opts ...Option) Model {
	m := NewModel(opts...)
	m.toastTTL = time.Millisecond
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(Model)
}

// newBrowseModel returns a sized model in browse mode showing contacts.
func newBrowseModel(t *testing.T, contacts []contact.Contact, opts ...Option) Model {
	t.Helper()
	m := newSizedModel(80, 30, opts...)
	updated, _ := m.Update(ContactsLoadedMsg{Contacts: contacts})
	m = updated.(Model)
	if m.mode != ModeBrowse {
		t.Fatalf("mode = %d, want ModeBrowse", m.mode)
	}
	return m
}

// update sends msg and returns the resulting Model and command.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// typeText sends s to the model one rune at a time.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func keyPress(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
