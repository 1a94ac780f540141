package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contactos/internal/access"
	"github.com/smileynet/contactos/internal/contact"
	"github.com/smileynet/contactos/internal/logging"
	"github.com/smileynet/contactos/internal/messenger"
)

// Layout heights in lines.
const (
	searchBoxHeight = 3 // input plus top and bottom border
	countLineHeight = 1
	toastLineHeight = 1
	helpBarHeight   = 1
	rowHeight       = 2 // name line plus number line
	borderChrome    = 2
)

// toastDuration is how long a notification stays on screen.
const toastDuration = 2 * time.Second

// Notification texts.
const (
	toastDenied     = "Contacts permission denied!"
	toastLoadFailed = "Could not load contacts."
	toastNoNumber   = "This contact has no phone number."
	toastOpenFailed = "Could not open the messaging app."
)

// errNoHandoff is reported when a row is tapped without a Handoff configured.
var errNoHandoff = errors.New("picker: no messaging app configured")

// Model is the root Bubble Tea model for the contact picker.
type Model struct {
	mode      Mode
	width     int
	height    int
	search    textinput.Model
	presenter Presenter
	cursor    int
	offset    int
	spinner   spinner.Model
	help      help.Model
	toast     string
	toastSeq  int
	toastTTL  time.Duration
	keys      browseKeys
	permKeys  permissionKeys

	ctx     context.Context
	loader  Loader
	handoff Handoff
	auth    Authorizer
	logger  *slog.Logger
	appName string
}

// Option configures a Model.
type Option func(*Model)

// WithLoader sets the address book loader.
func WithLoader(l Loader) Option {
	return func(m *Model) { m.loader = l }
}

// WithHandoff sets the messaging handoff invoked on row taps.
func WithHandoff(h Handoff) Option {
	return func(m *Model) { m.handoff = h }
}

// WithAuthorizer sets the access gate. Without one, access is granted.
func WithAuthorizer(a Authorizer) Option {
	return func(m *Model) { m.auth = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithContext sets the context passed to the loader and handoff.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithAppName sets the name shown in the access dialog.
func WithAppName(name string) Option {
	return func(m *Model) { m.appName = name }
}

// NewModel creates a picker Model in the loading mode.
func NewModel(opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "Search contacts"
	ti.Prompt = "> "
	ti.Focus()

	m := Model{
		mode:     ModeLoading,
		search:   ti,
		spinner:  s,
		help:     help.New(),
		toastTTL: toastDuration,
		keys:     BrowseKeyMap(),
		permKeys: PermissionKeyMap(),
		ctx:      context.Background(),
		logger:   logging.Discard(),
		appName:  "contactos",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.presenter = NewPresenter(nil, m.tap)
	return m
}

// Init starts the spinner and the access check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkAccess(), textinput.Blink)
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-borderChrome-lipgloss.Width(m.search.Prompt)-1, 1)
		m.ensureCursorVisible()
		return m, nil

	case AccessMsg:
		return m.applyAccess(msg)

	case ContactsLoadedMsg:
		return m.applyContacts(msg)

	case HandoffResultMsg:
		return m.applyHandoff(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode != ModeLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// checkAccess returns a command that consults the authorizer.
func (m Model) checkAccess() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		if auth == nil {
			return AccessMsg{Outcome: access.Granted, Decided: true}
		}
		outcome, decided, err := auth.Check(access.ReadContacts)
		return AccessMsg{Outcome: outcome, Decided: decided, Err: err}
	}
}

// record returns a command that remembers the user's answer. Failures are
// logged; the answer still applies to this launch.
func (m Model) record(outcome access.Outcome) tea.Cmd {
	auth, logger := m.auth, m.logger
	return func() tea.Msg {
		if auth == nil {
			return nil
		}
		if err := auth.Record(access.ReadContacts, outcome); err != nil {
			logger.Error("recording access decision", "outcome", outcome, "error", err)
		}
		return nil
	}
}

// load returns a command that reads the address book once.
func (m Model) load() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		if loader == nil {
			return ContactsLoadedMsg{}
		}
		contacts, err := loader.Load(ctx)
		return ContactsLoadedMsg{Contacts: contacts, Err: err}
	}
}

// tap is the presenter's row callback: it hands phone to the messenger.
func (m Model) tap(phone string) tea.Msg {
	if m.handoff == nil {
		return HandoffResultMsg{Phone: phone, Err: errNoHandoff}
	}
	return HandoffResultMsg{Phone: phone, Err: m.handoff.Send(m.ctx, phone)}
}

func (m Model) applyAccess(msg AccessMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Error("checking access", "error", msg.Err)
	}
	switch {
	case msg.Err != nil || !msg.Decided:
		m.mode = ModePermission
		return m, nil
	case msg.Outcome == access.Granted:
		m.logger.Info("contacts access granted")
		return m.startLoading()
	default:
		return m.deny()
	}
}

// startLoading switches to the loading mode and reads the address book.
func (m Model) startLoading() (tea.Model, tea.Cmd) {
	m.mode = ModeLoading
	return m, tea.Batch(m.load(), m.spinner.Tick)
}

// deny shows the denial notice over an empty list.
func (m Model) deny() (tea.Model, tea.Cmd) {
	m.logger.Warn("contacts access denied")
	m.mode = ModeBrowse
	m.presenter = NewPresenter(nil, m.tap)
	m.cursor, m.offset = 0, 0
	return m, m.showToast(toastDenied)
}

func (m Model) applyContacts(msg ContactsLoadedMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeBrowse
	m.cursor, m.offset = 0, 0

	if msg.Err != nil {
		m.logger.Error("loading contacts", "error", msg.Err)
		m.presenter = NewPresenter(nil, m.tap)
		return m, m.showToast(toastLoadFailed)
	}

	m.logger.Info("contacts loaded", "count", len(msg.Contacts))
	m.presenter = NewPresenter(msg.Contacts, m.tap).SetQuery(m.search.Value())
	return m, nil
}

func (m Model) applyHandoff(msg HandoffResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err == nil {
		m.logger.Info("conversation opened", "phone", msg.Phone)
		return m, nil
	}

	m.logger.Warn("handoff failed", "phone", msg.Phone, "error", msg.Err)

	var nr *messenger.NotResolvableError
	switch {
	case errors.As(msg.Err, &nr):
		return m, m.showToast(nr.Notice())
	case errors.Is(msg.Err, messenger.ErrEmptyAddress):
		return m, m.showToast(toastNoNumber)
	default:
		return m, m.showToast(toastOpenFailed)
	}
}

// showToast displays text until toastTTL passes or a newer toast
// replaces it.
func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePermission:
		return m.handlePermissionKey(msg)
	case ModeBrowse:
		return m.handleBrowseKey(msg)
	}
	return m, nil
}

func (m Model) handlePermissionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.permKeys.Allow):
		m.logger.Info("contacts access granted by user")
		next, cmd := m.startLoading()
		return next, tea.Batch(m.record(access.Granted), cmd)
	case key.Matches(msg, m.permKeys.Deny):
		next, cmd := m.deny()
		return next, tea.Batch(m.record(access.Denied), cmd)
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.presenter.Visible()

	switch {
	case key.Matches(msg, m.keys.Up):
		if len(visible) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(visible) - 1
			}
			m.ensureCursorVisible()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(visible) > 0 {
			m.cursor++
			if m.cursor >= len(visible) {
				m.cursor = 0
			}
			m.ensureCursorVisible()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.cursor = max(m.cursor-m.rowsPerPage(), 0)
		m.ensureCursorVisible()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.cursor = max(min(m.cursor+m.rowsPerPage(), len(visible)-1), 0)
		m.ensureCursorVisible()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if c, ok := m.Selected(); ok {
			return m, m.presenter.RowTapped(c)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() == "" {
			return m, tea.Quit
		}
		m.search.SetValue("")
		m.setQuery("")
		return m, nil
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != prev {
		m.setQuery(q)
	}
	return m, cmd
}

// setQuery re-filters and moves the cursor back to the first row.
func (m *Model) setQuery(q string) {
	m.presenter = m.presenter.SetQuery(q)
	m.cursor, m.offset = 0, 0
}

// Selected returns the contact under the cursor.
func (m Model) Selected() (contact.Contact, bool) {
	visible := m.presenter.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return contact.Contact{}, false
	}
	return visible[m.cursor], true
}

// Presenter returns the model's presenter.
func (m Model) Presenter() Presenter { return m.presenter }

// Mode returns the current view mode.
func (m Model) Mode() Mode { return m.mode }

// listHeight returns the lines available for contact rows.
func (m Model) listHeight() int {
	return m.height - searchBoxHeight - countLineHeight - toastLineHeight - helpBarHeight
}

// rowsPerPage returns how many contacts fit in the list, at least one.
func (m Model) rowsPerPage() int {
	return max(m.listHeight()/rowHeight, 1)
}

// ensureCursorVisible scrolls the list so the cursor row is on screen.
func (m *Model) ensureCursorVisible() {
	rows := m.rowsPerPage()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the current mode with the notification line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.mode {
	case ModePermission:
		body = consentView(m.appName)
	case ModeLoading:
		body = fmt.Sprintf("%s Loading contacts...", m.spinner.View())
	default:
		body = m.viewBrowse()
	}

	toast := ""
	if m.toast != "" {
		toast = toastStyle.Render(m.toast)
	}
	helpView := m.help.View(HelpBindings(m.mode))

	return lipgloss.JoinVertical(lipgloss.Left, body, toast, helpView)
}

// viewBrowse renders the search box, match count, and visible rows.
func (m Model) viewBrowse() string {
	searchBox := SearchBorder().
		Width(max(m.width-borderChrome, 1)).
		Render(m.search.View())

	visible := m.presenter.Visible()
	count := mutedText.Render(fmt.Sprintf("%d of %d contacts", len(visible), len(m.presenter.Full())))

	list := lipgloss.NewStyle().
		Height(max(m.listHeight(), 1)).
		Render(m.viewList())

	return lipgloss.JoinVertical(lipgloss.Left, searchBox, count, list)
}

// viewList renders the page of visible rows around the cursor.
func (m Model) viewList() string {
	visible := m.presenter.Visible()
	if len(visible) == 0 {
		return m.viewEmpty()
	}

	var b strings.Builder
	end := min(m.offset+m.rowsPerPage(), len(visible))
	for i := m.offset; i < end; i++ {
		if i > m.offset {
			b.WriteByte('\n')
		}
		rv := Render(visible[i])
		if i == m.cursor {
			b.WriteString(CursorMarker)
			b.WriteString(selectedStyle.Render(rv.Title))
		} else {
			b.WriteString("  ")
			b.WriteString(rv.Title)
		}
		b.WriteString("\n    ")
		b.WriteString(mutedText.Render(rv.Subtitle))
	}
	return b.String()
}

func (m Model) viewEmpty() string {
	query := m.presenter.Query()
	if len(m.presenter.Full()) == 0 || query == "" {
		return mutedText.Render("No contacts")
	}

	line := fmt.Sprintf("No contacts match %q.", query)
	if s := contact.Suggest(m.presenter.Full(), query); s != "" {
		line += fmt.Sprintf(" Did you mean %s?", s)
	}
	return mutedText.Render(line)
}
